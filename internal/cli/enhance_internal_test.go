package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/cardforge/internal/cards"
	"github.com/rshade/cardforge/internal/config"
	"github.com/rshade/cardforge/internal/enhance"
)

// fakeEnhancer returns canned examples and can fail specific fronts.
type fakeEnhancer struct {
	failFronts map[string]bool
}

func (f *fakeEnhancer) Enhance(_ context.Context, card cards.RawCard) (cards.Example, error) {
	if f.failFronts[card.Front] {
		return cards.Example{}, errors.New("model unavailable")
	}
	return cards.Example{
		SentenceFront: card.Front + " in a sentence",
		SentenceBack:  card.Back + " in a sentence",
	}, nil
}

// writeBaseDeck writes a minimal base CSV and returns its path.
func writeBaseDeck(t *testing.T, dir string, rows [][]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Front,Back,deck_name\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, ",") + "\n")
	}

	path := filepath.Join(dir, "Verbs.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

// TestEnhanceCmd_WritesEnhancedDeck runs the command end to end with a fake
// model and checks the output CSV.
func TestEnhanceCmd_WritesEnhancedDeck(t *testing.T) {
	dir := t.TempDir()
	input := writeBaseDeck(t, dir, [][]string{
		{"andare", "to go", "Italian::Verbs"},
		{"essere", "to be", "Italian::Verbs"},
	})
	outDir := filepath.Join(dir, "out")

	factory := func(*config.Config, string) (enhance.Enhancer, error) {
		return &fakeEnhancer{}, nil
	}

	cmd := newEnhanceCmd(factory)
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--input", input, "--output-dir", outDir, "--backoff", "1ms"})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(outDir, "Verbs.csv"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "andare in a sentence")
	assert.Contains(t, content, "to be in a sentence")
	assert.Contains(t, out.String(), "2 succeeded")
}

// TestEnhanceCmd_FailedCardKeepsEmptyFields verifies that a card exhausting
// its retries is still written, with empty example columns.
func TestEnhanceCmd_FailedCardKeepsEmptyFields(t *testing.T) {
	dir := t.TempDir()
	input := writeBaseDeck(t, dir, [][]string{
		{"andare", "to go", "Italian::Verbs"},
		{"rompere", "to break", "Italian::Verbs"},
	})
	outDir := filepath.Join(dir, "out")

	factory := func(*config.Config, string) (enhance.Enhancer, error) {
		return &fakeEnhancer{failFronts: map[string]bool{"rompere": true}}, nil
	}

	cmd := newEnhanceCmd(factory)
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--input", input,
		"--output-dir", outDir,
		"--max-retries", "1",
		"--backoff", "1ms",
	})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(outDir, "Verbs.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus both cards")
	assert.Contains(t, lines[1], "andare in a sentence")
	assert.Equal(t, "rompere,to break,Italian::Verbs,,", lines[2])
	assert.Contains(t, out.String(), "failed")
}

// TestEnhanceCmd_FactoryError verifies setup failures abort before any work.
func TestEnhanceCmd_FactoryError(t *testing.T) {
	dir := t.TempDir()
	input := writeBaseDeck(t, dir, [][]string{{"andare", "to go", "Italian::Verbs"}})

	factory := func(*config.Config, string) (enhance.Enhancer, error) {
		return nil, ErrMissingAPIKey
	}

	cmd := newEnhanceCmd(factory)
	cmd.SetArgs([]string{"--input", input, "--output-dir", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// TestRunConfig verifies changed flags override config file values.
func TestRunConfig(t *testing.T) {
	cfg := config.New()
	cfg.Run.BatchSize = 25
	cfg.Run.MaxRetries = 5

	cmd := newEnhanceCmd(func(*config.Config, string) (enhance.Enhancer, error) {
		return &fakeEnhancer{}, nil
	})
	require.NoError(t, cmd.Flags().Parse([]string{"--batch-size", "4", "--rate", "2.5"}))

	var params enhanceParams
	params.batchSize, _ = cmd.Flags().GetInt("batch-size")
	params.ratePerSecond, _ = cmd.Flags().GetFloat64("rate")

	run := runConfig(cmd, params, cfg)

	assert.Equal(t, 4, run.BatchSize, "changed flag wins")
	assert.InDelta(t, 2.5, run.RatePerSecond, 0.001)
	assert.Equal(t, 5, run.MaxRetries, "unchanged flag defers to config")
	assert.Equal(t, time.Second, run.BackoffBase)
}

// TestDefaultEnhancerFactory_MissingKey verifies the API key guard.
func TestDefaultEnhancerFactory_MissingKey(t *testing.T) {
	cfg := config.New()
	cfg.Model.APIKeyEnv = "CARDFORGE_TEST_NO_SUCH_KEY"
	t.Setenv("CARDFORGE_TEST_NO_SUCH_KEY", "")

	_, err := defaultEnhancerFactory(cfg, "gpt-4o")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
