package anki

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultKeys are the note fields extracted into base CSVs. The deck_name
// key is resolved from the card's deck rather than its note fields.
var DefaultKeys = []string{"Front", "Back", "deck_name"}

// ErrNoCards indicates the collection contained no cards.
var ErrNoCards = errors.New("no cards found in the deck")

// Convert extracts cards from an .apkg file and writes one CSV per deck
// into outDir. Each output file is named after the last "::" segment of the
// deck name. It returns the number of cards written per output file.
func Convert(apkgPath, outDir string, keys []string) (map[string]int, error) {
	if len(keys) == 0 {
		keys = DefaultKeys
	}

	dbPath, cleanup, err := ExtractCollection(apkgPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cardList, err := ReadCards(dbPath)
	if err != nil {
		return nil, err
	}
	if len(cardList) == 0 {
		return nil, ErrNoCards
	}

	byDeck := map[string][]Card{}
	for _, card := range cardList {
		byDeck[card.DeckName] = append(byDeck[card.DeckName], card)
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make(map[string]int, len(byDeck))

	// Deterministic output order for logging and tests.
	deckNames := make([]string, 0, len(byDeck))
	for name := range byDeck {
		deckNames = append(deckNames, name)
	}
	sort.Strings(deckNames)

	for _, deckName := range deckNames {
		path := filepath.Join(outDir, deckFileName(deckName))
		if err := writeDeckCSV(path, keys, byDeck[deckName]); err != nil {
			return nil, fmt.Errorf("deck %q: %w", deckName, err)
		}
		written[path] = len(byDeck[deckName])
	}

	return written, nil
}

// deckFileName derives an output file name from the last "::" segment of a
// deck name, e.g. "Italian::Verbs" -> "Verbs.csv".
func deckFileName(deckName string) string {
	parts := strings.Split(deckName, "::")
	suffix := strings.TrimSpace(parts[len(parts)-1])
	return suffix + ".csv"
}

// writeDeckCSV writes one deck's cards with the selected keys as columns.
func writeDeckCSV(path string, keys []string, deck []Card) error {
	f, err := os.Create(path) //nolint:gosec // path derived from a CLI flag
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(keys); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing header: %w", err)
	}

	for _, card := range deck {
		record := make([]string, len(keys))
		for i, key := range keys {
			if key == "deck_name" {
				record[i] = card.DeckName
				continue
			}
			record[i] = card.Field(key)
		}
		if err := writer.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
