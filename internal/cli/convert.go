package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rshade/cardforge/internal/anki"
	"github.com/rshade/cardforge/internal/logging"
)

// NewConvertCmd creates the "convert" command, which extracts an Anki
// .apkg export into one base CSV per deck.
func NewConvertCmd() *cobra.Command {
	var outDir string
	var keys []string

	cmd := &cobra.Command{
		Use:   "convert <deck.apkg>",
		Short: "Convert an Anki .apkg export into base CSVs, one per deck",
		Long: `Extracts the collection database from an Anki .apkg export, strips HTML
from note fields, and writes one CSV per deck. The resulting CSVs are the
input format for the enhance command.`,
		Example: convertCmdExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.ComponentLogger(*logging.FromContext(cmd.Context()), "convert")

			written, err := anki.Convert(args[0], outDir, keys)
			if err != nil {
				return fmt.Errorf("converting %s: %w", args[0], err)
			}

			paths := make([]string, 0, len(written))
			for path := range written {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			for _, path := range paths {
				logger.Info().Str("file", path).Int("cards", written[path]).Msg("deck written")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cards\n", path, written[path])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "output/base", "Directory for the generated CSVs")
	cmd.Flags().StringSliceVar(&keys, "keys", anki.DefaultKeys, "CSV columns to extract from each note")

	return cmd
}

const convertCmdExample = `  # Convert an export into one CSV per deck
  cardforge convert Italian.apkg

  # Custom output directory and columns
  cardforge convert Italian.apkg --out-dir decks --keys Front,Back,deck_name`
