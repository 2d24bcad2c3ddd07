package cards

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// Column headers for the base and enhanced CSV formats.
var (
	// rawHeader is the header of a base deck CSV.
	rawHeader = []string{"Front", "Back", "deck_name"}

	// enhancedHeader is the header of an enhanced deck CSV.
	enhancedHeader = []string{
		"front", "back", "deck_name",
		"example_sentence_front", "example_sentence_back",
	}
)

// CSV reading errors.
var (
	ErrMissingHeader = errors.New("input CSV has no header row")
	ErrBadHeader     = errors.New("input CSV header does not match the expected columns")
)

// ReadRaw parses base cards from r. Field text is normalized to Unicode NFC
// so that composed and decomposed forms of the same accented character
// compare equal downstream. A positive limit caps the number of cards read,
// which is useful for trial runs.
func ReadRaw(r io.Reader, limit int) ([]RawCard, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(rawHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var cards []RawCard
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(cards)+2, err)
		}

		cards = append(cards, RawCard{
			Front:    norm.NFC.String(record[0]),
			Back:     norm.NFC.String(record[1]),
			DeckName: norm.NFC.String(record[2]),
		})

		if limit > 0 && len(cards) >= limit {
			break
		}
	}

	return cards, nil
}

// ReadRawFile reads base cards from the file at path.
func ReadRawFile(path string, limit int) ([]RawCard, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	cards, err := ReadRaw(f, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cards, nil
}

// WriteEnhanced writes enhanced cards to w in the enhanced CSV format.
func WriteEnhanced(w io.Writer, cards []EnhancedCard) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(enhancedHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, card := range cards {
		record := []string{
			card.Front,
			card.Back,
			card.DeckName,
			card.SentenceFront,
			card.SentenceBack,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEnhancedFile writes enhanced cards to the file at path, creating
// parent directories as needed.
func WriteEnhancedFile(path string, cards []EnhancedCard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := WriteEnhanced(f, cards); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// checkHeader validates the base CSV header column names.
func checkHeader(header []string) error {
	if len(header) != len(rawHeader) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrBadHeader, len(header), len(rawHeader))
	}
	for i, want := range rawHeader {
		if header[i] != want {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], want)
		}
	}
	return nil
}
