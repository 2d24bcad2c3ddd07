package cards_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cardforge/internal/cards"
)

// TestReadRaw verifies parsing, limits, and header validation.
func TestReadRaw(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int
		want    []cards.RawCard
		wantErr error
	}{
		{
			name:  "two cards",
			input: "Front,Back,deck_name\nciao,hello,Italian::Greetings\ngrazie,thanks,Italian::Greetings\n",
			want: []cards.RawCard{
				{Front: "ciao", Back: "hello", DeckName: "Italian::Greetings"},
				{Front: "grazie", Back: "thanks", DeckName: "Italian::Greetings"},
			},
		},
		{
			name:  "limit caps rows",
			input: "Front,Back,deck_name\na,1,D\nb,2,D\nc,3,D\n",
			limit: 2,
			want: []cards.RawCard{
				{Front: "a", Back: "1", DeckName: "D"},
				{Front: "b", Back: "2", DeckName: "D"},
			},
		},
		{
			name:  "header only",
			input: "Front,Back,deck_name\n",
			want:  nil,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: cards.ErrMissingHeader,
		},
		{
			name:    "wrong column name",
			input:   "front,back,deck\nx,y,z\n",
			wantErr: cards.ErrBadHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cards.ReadRaw(strings.NewReader(tt.input), tt.limit)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReadRaw_NormalizesToNFC verifies that decomposed accented characters
// are normalized to their composed form.
func TestReadRaw_NormalizesToNFC(t *testing.T) {
	// "e" followed by combining acute accent (U+0301), NFD form of "é".
	input := "Front,Back,deck_name\ncaffé,coffee,Italian\n"

	got, err := cards.ReadRaw(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "caffé", got[0].Front)
}

// TestWriteEnhanced verifies the enhanced CSV format round-trips through a
// plain CSV parse.
func TestWriteEnhanced(t *testing.T) {
	enhanced := []cards.EnhancedCard{
		cards.Enhance(
			cards.RawCard{Front: "ciao", Back: "hello", DeckName: "Italian"},
			cards.Example{SentenceFront: "Ciao, come stai?", SentenceBack: "Hello, how are you?"},
		),
	}

	var sb strings.Builder
	require.NoError(t, cards.WriteEnhanced(&sb, enhanced))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "front,back,deck_name,example_sentence_front,example_sentence_back", lines[0])
	assert.Contains(t, lines[1], "ciao")
	assert.Contains(t, lines[1], "Ciao, come stai?")
}

// TestWriteEnhancedFile verifies parent directories are created.
func TestWriteEnhancedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enhanced", "deck.csv")

	err := cards.WriteEnhancedFile(path, []cards.EnhancedCard{
		cards.Enhance(
			cards.RawCard{Front: "a", Back: "b", DeckName: "D"},
			cards.Example{SentenceFront: "s1", SentenceBack: "s2"},
		),
	})
	require.NoError(t, err)

	got, err := cards.ReadRawFile(path, 0)
	require.Error(t, err, "enhanced header should not parse as a base deck")
	assert.Nil(t, got)
}
