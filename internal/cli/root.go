// Package cli wires the cardforge commands: enhance, convert, and config
// management.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/cardforge/internal/config"
	"github.com/rshade/cardforge/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// configKey carries the loaded *config.Config through the command context.
type configKey struct{}

// configFromContext returns the config loaded by the root command's
// PersistentPreRunE, or fresh defaults if the command is run standalone.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.New()
}

// NewRootCmd creates the root cobra command for the cardforge CLI. It wires
// configuration loading, logging, and the enhance/convert/config
// subcommands.
func NewRootCmd(version string) *cobra.Command {
	var closeLogger func() error

	cmd := &cobra.Command{
		Use:     "cardforge",
		Short:   "Enrich Anki flashcard decks with AI-generated example sentences",
		Long:    "cardforge: convert Anki exports to CSV and enhance each card with example sentences generated by an LLM",
		Version: version,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if configPath == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return err
				}
				configPath = defaultPath
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				// The config subcommands must still run against a broken
				// config file so they can report or replace it.
				if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
					cfg = config.New()
				} else {
					return err
				}
			}

			loggingCfg := logging.Config{Level: cfg.Logging.Level, File: cfg.Logging.File}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				loggingCfg.Level = "debug"
				loggingCfg.File = ""
			}

			logger, closer, err := logging.New(loggingCfg)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			closeLogger = closer

			logger = logger.With().Str("run_id", logging.NewRunID()).Logger()

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithContext(ctx, logger)
			cmd.SetContext(ctx)

			cliLogger := logging.ComponentLogger(logger, "cli")
			cliLogger.Debug().
				Str("command", cmd.Name()).
				Str("config", configPath).
				Msg("command started")
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if closeLogger != nil {
				return closeLogger()
			}
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.cardforge/config.yaml)")

	cmd.AddCommand(NewEnhanceCmd(), NewConvertCmd(), NewConfigCmd())

	return cmd
}

const rootCmdExample = `  # Convert an Anki export into base CSVs, one per deck
  cardforge convert MyDeck.apkg --out-dir output/base

  # Enhance every card in a deck with generated example sentences
  cardforge enhance --input output/base/Verbs.csv --output-dir output/enhanced

  # Enhance several decks at once with tighter pacing
  cardforge enhance --input a.csv --input b.csv --batch-size 5 --inter-batch-delay 2s

  # Trial run on the first 10 cards
  cardforge enhance --input deck.csv --limit 10

  # Initialize configuration
  cardforge config init`
