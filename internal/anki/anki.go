// Package anki converts Anki .apkg exports into base deck CSVs.
//
// An .apkg file is a ZIP archive containing a SQLite collection database
// (collection.anki2, or collection.anki21 for newer exports). Deck and note
// type metadata live as JSON blobs in the col table; note fields are packed
// into a single column separated by the ASCII unit separator.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// fieldSeparator is the ASCII unit separator Anki uses to pack note fields.
const fieldSeparator = "\x1f"

// ErrNoCollection indicates the archive contains no collection database.
var ErrNoCollection = errors.New("no collection database found in .apkg file")

// Card is one flashcard extracted from a collection, with its note fields
// resolved to the note type's field names.
type Card struct {
	NoteID    int64
	CardID    int64
	DeckName  string
	ModelName string
	Tags      string
	Fields    map[string]string
}

// Field returns the named note field, or the empty string.
func (c Card) Field(name string) string {
	return c.Fields[name]
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanHTML removes HTML tags, decodes entities, and collapses whitespace.
func CleanHTML(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// ExtractCollection unpacks the .apkg archive into a temporary directory and
// returns the path to the collection database. The caller must invoke the
// returned cleanup function when done.
func ExtractCollection(apkgPath string) (string, func(), error) {
	tempDir, err := os.MkdirTemp("", "cardforge-apkg-")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	if err := extractArchive(apkgPath, tempDir); err != nil {
		cleanup()
		return "", nil, err
	}

	for _, name := range []string{"collection.anki2", "collection.anki21"} {
		candidate := filepath.Join(tempDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, cleanup, nil
		}
	}

	cleanup()
	return "", nil, ErrNoCollection
}

// extractArchive unpacks a ZIP archive into destDir, refusing entries that
// would escape it.
func extractArchive(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening .apkg archive: %w", err)
	}
	defer r.Close() //nolint:errcheck // read-only handle

	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name) //nolint:gosec // validated below
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer src.Close() //nolint:errcheck // read-only handle

	dst, err := os.Create(target) //nolint:gosec // target validated against destDir
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // local archive from a CLI flag
		_ = dst.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return dst.Close()
}

// deckInfo and modelInfo are the subsets of the col table's JSON metadata
// that the converter needs.
type deckInfo struct {
	Name string `json:"name"`
}

type modelInfo struct {
	Name string `json:"name"`
	Flds []struct {
		Name string `json:"name"`
	} `json:"flds"`
}

// ReadCards extracts all cards with their notes from the collection
// database, resolving deck and note type names from the col metadata.
func ReadCards(dbPath string) ([]Card, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening collection database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only handle

	decks, models, err := readCollectionMeta(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT n.id, n.flds, n.tags, n.mid, c.id, c.did
		FROM cards c
		JOIN notes n ON c.nid = n.id
		ORDER BY c.did, n.id, c.ord`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close() //nolint:errcheck // iterated to completion

	var result []Card
	for rows.Next() {
		var (
			noteID, cardID, modelID, deckID int64
			flds, tags                      string
		)
		if err := rows.Scan(&noteID, &flds, &tags, &modelID, &cardID, &deckID); err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}

		card := Card{
			NoteID:   noteID,
			CardID:   cardID,
			Tags:     tags,
			DeckName: fmt.Sprintf("Unknown Deck (%d)", deckID),
			Fields:   map[string]string{},
		}
		if deck, ok := decks[fmt.Sprint(deckID)]; ok {
			card.DeckName = deck.Name
		}

		model, ok := models[fmt.Sprint(modelID)]
		if ok {
			card.ModelName = model.Name
		} else {
			card.ModelName = fmt.Sprintf("Unknown Model (%d)", modelID)
		}

		values := strings.Split(flds, fieldSeparator)
		for i, fld := range model.Flds {
			if i < len(values) {
				card.Fields[fld.Name] = CleanHTML(values[i])
			} else {
				card.Fields[fld.Name] = ""
			}
		}

		result = append(result, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	return result, nil
}

// readCollectionMeta loads the decks and models JSON from the col table.
func readCollectionMeta(db *sql.DB) (map[string]deckInfo, map[string]modelInfo, error) {
	var decksJSON, modelsJSON string
	err := db.QueryRow("SELECT decks, models FROM col LIMIT 1").Scan(&decksJSON, &modelsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errors.New("no collection data found in database")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading collection metadata: %w", err)
	}

	var decks map[string]deckInfo
	if err := json.Unmarshal([]byte(decksJSON), &decks); err != nil {
		return nil, nil, fmt.Errorf("parsing decks metadata: %w", err)
	}

	var models map[string]modelInfo
	if err := json.Unmarshal([]byte(modelsJSON), &models); err != nil {
		return nil, nil, fmt.Errorf("parsing models metadata: %w", err)
	}

	return decks, models, nil
}
