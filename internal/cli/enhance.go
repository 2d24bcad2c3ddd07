package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/cardforge/internal/cards"
	"github.com/rshade/cardforge/internal/config"
	"github.com/rshade/cardforge/internal/enhance"
	"github.com/rshade/cardforge/internal/executor"
	"github.com/rshade/cardforge/internal/logging"
)

// ErrMissingAPIKey indicates the configured API key variable is not set.
var ErrMissingAPIKey = errors.New("API key environment variable is not set")

// enhancerFactory builds the per-card operation. Tests inject deterministic
// fakes here; production uses the OpenAI-backed client.
type enhancerFactory func(cfg *config.Config, model string) (enhance.Enhancer, error)

// defaultEnhancerFactory reads the API key from the configured environment
// variable and creates the OpenAI client.
func defaultEnhancerFactory(cfg *config.Config, model string) (enhance.Enhancer, error) {
	apiKey := os.Getenv(cfg.Model.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Model.APIKeyEnv)
	}
	return enhance.NewClient(apiKey, model)
}

// enhanceParams holds the flag values for the enhance command.
type enhanceParams struct {
	inputs          []string
	outputDir       string
	batchSize       int
	concurrency     int
	maxRetries      int
	backoffBase     time.Duration
	interBatchDelay time.Duration
	ratePerSecond   float64
	limit           int
	model           string
	fileWorkers     int
}

// NewEnhanceCmd creates the "enhance" command, which runs the batch
// executor over every card of the given decks.
func NewEnhanceCmd() *cobra.Command {
	return newEnhanceCmd(defaultEnhancerFactory)
}

// newEnhanceCmd allows tests to inject a fake enhancer factory.
func newEnhanceCmd(factory enhancerFactory) *cobra.Command {
	var params enhanceParams

	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Generate example sentences for every card in the given decks",
		Long: `Reads base deck CSVs, calls the configured LLM once per card to generate an
example sentence pair, and writes enhanced CSVs. Cards are processed in
batches with bounded concurrency; transient failures are retried with
exponential backoff, and a failed card never aborts the run.`,
		Example: enhanceCmdExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnhance(cmd, params, factory)
		},
	}

	cmd.Flags().StringArrayVar(&params.inputs, "input", nil, "Input deck CSV (repeatable)")
	cmd.Flags().StringVar(&params.outputDir, "output-dir", "", "Directory for enhanced CSVs (default from config)")
	cmd.Flags().IntVar(&params.batchSize, "batch-size", 0, "Cards per batch (default from config)")
	cmd.Flags().IntVar(&params.concurrency, "concurrency", 0, "Max in-flight requests (default: batch size)")
	cmd.Flags().IntVar(&params.maxRetries, "max-retries", 0, "Retries per card (default from config)")
	cmd.Flags().DurationVar(&params.backoffBase, "backoff", 0, "Initial retry delay (default from config)")
	cmd.Flags().DurationVar(&params.interBatchDelay, "inter-batch-delay", 0, "Pause between batches (default from config)")
	cmd.Flags().Float64Var(&params.ratePerSecond, "rate", 0, "Request rate limit per second, 0 = unlimited")
	cmd.Flags().IntVar(&params.limit, "limit", 0, "Only process the first N cards per deck, 0 = all")
	cmd.Flags().StringVar(&params.model, "model", "", "Model name (default from config)")
	cmd.Flags().IntVar(&params.fileWorkers, "file-workers", 2, "Decks processed concurrently")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

const enhanceCmdExample = `  # Enhance one deck
  cardforge enhance --input output/base/Verbs.csv

  # Gentle pacing against a strict rate limit
  cardforge enhance --input deck.csv --batch-size 5 --rate 1 --inter-batch-delay 5s

  # More aggressive run with a different model
  cardforge enhance --input deck.csv --batch-size 20 --concurrency 10 --model gpt-4o-mini`

// runConfig resolves the executor config from flags and the config file;
// changed flags win.
func runConfig(cmd *cobra.Command, params enhanceParams, cfg *config.Config) executor.Config {
	run := executor.Config{
		BatchSize:       cfg.Run.BatchSize,
		MaxConcurrency:  cfg.Run.MaxConcurrency,
		MaxRetries:      cfg.Run.MaxRetries,
		BackoffBase:     cfg.Run.BackoffBase.Std(),
		InterBatchDelay: cfg.Run.InterBatchDelay.Std(),
		RatePerSecond:   cfg.Run.RatePerSecond,
	}

	if cmd.Flags().Changed("batch-size") {
		run.BatchSize = params.batchSize
	}
	if cmd.Flags().Changed("concurrency") {
		run.MaxConcurrency = params.concurrency
	}
	if cmd.Flags().Changed("max-retries") {
		run.MaxRetries = params.maxRetries
	}
	if cmd.Flags().Changed("backoff") {
		run.BackoffBase = params.backoffBase
	}
	if cmd.Flags().Changed("inter-batch-delay") {
		run.InterBatchDelay = params.interBatchDelay
	}
	if cmd.Flags().Changed("rate") {
		run.RatePerSecond = params.ratePerSecond
	}

	return run
}

// runEnhance processes every input deck, concurrently up to --file-workers.
func runEnhance(cmd *cobra.Command, params enhanceParams, factory enhancerFactory) error {
	ctx := cmd.Context()
	cfg := configFromContext(ctx)
	logger := logging.ComponentLogger(*logging.FromContext(ctx), "enhance")

	model := cfg.Model.Name
	if params.model != "" {
		model = params.model
	}

	enhancer, err := factory(cfg, model)
	if err != nil {
		return err
	}

	outputDir := params.outputDir
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	runCfg := runConfig(cmd, params, cfg)
	styled := isTerminal(os.Stdout)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(params.fileWorkers)

	summaries := make([]deckSummary, len(params.inputs))

	for i, input := range params.inputs {
		group.Go(func() error {
			stats, err := enhanceDeck(groupCtx, logger, enhancer, runCfg, input, outputDir, params.limit)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			summaries[i] = deckSummary{deck: filepath.Base(input), stats: stats}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, summary := range summaries {
		renderSummary(cmd.OutOrStdout(), summary, styled)
	}
	return nil
}

// enhanceDeck runs the executor over one deck and writes the enhanced CSV.
// Failed cards are written with empty example fields so the output deck
// stays complete; the summary reports how many failed.
func enhanceDeck(
	ctx context.Context,
	logger zerolog.Logger,
	enhancer enhance.Enhancer,
	runCfg executor.Config,
	input, outputDir string,
	limit int,
) (executor.Stats, error) {
	deckLogger := logger.With().Str("deck", filepath.Base(input)).Logger()

	raw, err := cards.ReadRawFile(input, limit)
	if err != nil {
		return executor.Stats{}, err
	}
	deckLogger.Info().Int("cards", len(raw)).Msg("deck loaded")

	exec, err := executor.New[cards.RawCard, cards.Example](runCfg)
	if err != nil {
		return executor.Stats{}, err
	}
	exec = exec.WithEvents(executor.NewLogEvents(deckLogger))

	op := func(ctx context.Context, card cards.RawCard) (cards.Example, error) {
		return enhancer.Enhance(ctx, card)
	}

	result, err := exec.Execute(ctx, raw, op)
	if err != nil {
		return executor.Stats{}, err
	}

	enhanced := make([]cards.EnhancedCard, len(result.Outcomes))
	for i, outcome := range result.Outcomes {
		// Failed cards keep empty example fields; the deck stays complete.
		enhanced[i] = cards.Enhance(raw[i], outcome.Value)
	}

	outPath := filepath.Join(outputDir, filepath.Base(input))
	if err := cards.WriteEnhancedFile(outPath, enhanced); err != nil {
		return executor.Stats{}, err
	}

	deckLogger.Info().
		Str("output", outPath).
		Int("succeeded", result.Stats.Succeeded).
		Int("failed", result.Stats.Failed).
		Msg("deck enhanced")
	return result.Stats, nil
}
