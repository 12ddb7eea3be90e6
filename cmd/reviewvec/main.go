// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/reviewvec"
	"github.com/poiesic/reviewvec/ai"
	"github.com/poiesic/reviewvec/config"
	"github.com/poiesic/reviewvec/csvio"
	"github.com/poiesic/reviewvec/ingestion"
	"github.com/poiesic/reviewvec/reembed"
	"github.com/poiesic/reviewvec/storage"
	"github.com/poiesic/reviewvec/upsert"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "reviewvec",
		Usage: "Embed product reviews and upsert them into a vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load credentials from this file (default .env when present)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Embed every review of an input table and upsert the results",
				Action: runCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to the review CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "snapshot",
						Aliases: []string{"o"},
						Usage:   "Path of the enriched snapshot (default <input>_embedded.csv)",
					},
					&cli.BoolFlag{
						Name:  "include-title",
						Usage: "Include the review title in the embedded text",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print embedding progress to stderr",
					},
				}, append(embeddingFlags(), writeFlags()...)...),
			},
			{
				Name:   "retry-missing",
				Usage:  "Re-embed snapshot rows without an embedding and upsert the repaired rows",
				Action: retryMissingCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "snapshot",
						Aliases:  []string{"o"},
						Usage:    "Path of the enriched snapshot to repair",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "include-title",
						Usage: "Include the review title in the embedded text (must match the original run)",
					},
				}, append(embeddingFlags(), writeFlags()...)...),
			},
			{
				Name:   "stats",
				Usage:  "Count present and missing embeddings in a snapshot",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "snapshot",
						Aliases:  []string{"o"},
						Usage:    "Path of the enriched snapshot",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "count-sink",
						Usage: "Also count the rows stored in the sink table",
					},
					&cli.StringFlag{
						Name:  "sink",
						Usage: "Destination store: badger, postgres or qdrant (default $SINK or badger)",
					},
					&cli.StringFlag{
						Name:    "table",
						Usage:   "Destination table or collection",
						Value:   upsert.DefaultTable,
						EnvVars: []string{"REVIEWVEC_TABLE"},
					},
				},
			},
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-backend",
			Usage: "Embedding backend: openai or gemini (default $EMBEDDING_BACKEND or openai)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "OpenAI-compatible embedding service URL (default $EMBEDDING_HOST or the hosted API)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: ai.DefaultOpenAIModel,
		},
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Reject vectors whose length differs from this (0 accepts any)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout of a single embedding request",
			Value: ai.DefaultTimeout,
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Maximum number of concurrent embedding calls",
			Value:   runtime.NumCPU(),
			EnvVars: []string{"REVIEWVEC_WORKERS"},
		},
		&cli.Float64Flag{
			Name:  "rate-limit",
			Usage: "Maximum embedding requests per second (0 disables)",
		},
		&cli.BoolFlag{
			Name:  "normalize",
			Usage: "Scale vectors to unit length before storing",
		},
	}
}

func writeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sink",
			Usage: "Destination store: badger, postgres or qdrant (default $SINK or badger)",
		},
		&cli.StringFlag{
			Name:    "table",
			Usage:   "Destination table or collection",
			Value:   upsert.DefaultTable,
			EnvVars: []string{"REVIEWVEC_TABLE"},
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Number of records per upsert call",
			Value:   upsert.DefaultBatchSize,
			EnvVars: []string{"REVIEWVEC_BATCH_SIZE"},
		},
		&cli.BoolFlag{
			Name:  "continue-on-error",
			Usage: "Keep upserting later batches after one fails",
		},
		&cli.IntFlag{
			Name:  "max-attempts",
			Usage: "Attempts per batch before it is reported as failed",
			Value: 1,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff between batch attempts",
			Value: upsert.DefaultRetryDelay,
		},
	}
}

func setup(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	return config.LoadEnvFile(c.String("env-file"))
}

// loadEnvironment reads the environment, applies flag overrides and fails
// fast when a credential is missing.
func loadEnvironment(c *cli.Context) (*config.Config, error) {
	env, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if c.IsSet("embedding-backend") {
		env.EmbeddingBackend = strings.ToLower(c.String("embedding-backend"))
	}
	if c.IsSet("embedding-host") {
		env.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		env.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("sink") {
		env.Sink = strings.ToLower(c.String("sink"))
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return env, nil
}

func aiConfig(c *cli.Context, env *config.Config) (*ai.Config, error) {
	cfg := env.AIConfig(
		ai.WithDimensions(c.Int("dimensions")),
		ai.WithTimeout(c.Duration("timeout")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func pipelineOptions(c *cli.Context) []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("workers")),
		ingestion.WithRateLimit(c.Float64("rate-limit")),
		ingestion.WithNormalize(c.Bool("normalize")),
	}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(os.Stderr, 10))
	}
	return opts
}

func runConfig(c *cli.Context) (reviewvec.RunConfig, error) {
	cfg := reviewvec.RunConfig{
		InputPath:       c.String("input"),
		SnapshotPath:    c.String("snapshot"),
		Table:           c.String("table"),
		BatchSize:       c.Int("batch-size"),
		ContinueOnError: c.Bool("continue-on-error"),
		MaxAttempts:     c.Int("max-attempts"),
		RetryDelay:      c.Duration("retry-delay"),
		IncludeTitle:    c.Bool("include-title"),
	}
	if cfg.BatchSize <= 0 {
		return cfg, fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.MaxAttempts <= 0 {
		return cfg, fmt.Errorf("max-attempts must be greater than 0")
	}
	if c.Int("workers") <= 0 {
		return cfg, fmt.Errorf("workers must be greater than 0")
	}
	if c.Float64("rate-limit") < 0 {
		return cfg, fmt.Errorf("rate-limit cannot be negative")
	}
	if cfg.SnapshotPath == "" && cfg.InputPath != "" {
		cfg.SnapshotPath = defaultSnapshotPath(cfg.InputPath)
	}
	return cfg, nil
}

// defaultSnapshotPath places the snapshot next to the input file.
func defaultSnapshotPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_embedded" + ext
}

type command func(ctx context.Context, runner *reviewvec.Runner, cfg reviewvec.RunConfig) (*reviewvec.Summary, error)

// execute builds the embedder and sink from the environment and runs cmd.
func execute(c *cli.Context, cmd command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg, err := runConfig(c)
	if err != nil {
		return err
	}
	env, err := loadEnvironment(c)
	if err != nil {
		return err
	}
	aiCfg, err := aiConfig(c, env)
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, aiCfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer provider.Close()

	sink, err := openSink(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}
	defer sink.Close()

	runner, err := reviewvec.NewRunner(provider.Embedder(), sink,
		reviewvec.WithPipelineOptions(pipelineOptions(c)...))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Embedding backend: %s\n", aiCfg.Backend)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", aiCfg.EmbeddingModel)
	fmt.Fprintf(os.Stderr, "Sink: %s (table %s)\n", env.Sink, runCfg.Table)
	fmt.Fprintln(os.Stderr)

	summary, err := cmd(ctx, runner, runCfg)
	if summary != nil {
		summary.Print(os.Stdout)
	}
	return err
}

func runCommand(c *cli.Context) error {
	err := execute(c, func(ctx context.Context, r *reviewvec.Runner, cfg reviewvec.RunConfig) (*reviewvec.Summary, error) {
		return r.Run(ctx, cfg)
	})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func retryMissingCommand(c *cli.Context) error {
	err := execute(c, func(ctx context.Context, r *reviewvec.Runner, cfg reviewvec.RunConfig) (*reviewvec.Summary, error) {
		return r.RetryMissing(ctx, cfg)
	})
	if err != nil {
		return fmt.Errorf("retry-missing failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	path := c.String("snapshot")
	records, err := csvio.ReadSnapshot(path)
	if err != nil {
		return err
	}

	missing := reembed.MissingRows(records)
	present := len(records) - len(missing)
	dims := 0
	for _, rec := range records {
		if rec.HasVector() {
			dims = rec.Embedding().Dimensions()
			break
		}
	}

	fmt.Printf("Snapshot:           %s\n", path)
	fmt.Printf("Rows:               %d\n", len(records))
	fmt.Printf("With embedding:     %d\n", present)
	fmt.Printf("Missing embeddings: %d\n", len(missing))
	if dims > 0 {
		fmt.Printf("Dimensions:         %d\n", dims)
	}
	for _, row := range missing {
		fmt.Printf("  row %d: %s\n", row, records[row].MissingReason())
	}

	if !c.Bool("count-sink") {
		return nil
	}
	return printSinkCount(c)
}

func printSinkCount(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	env, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	if c.IsSet("sink") {
		env.Sink = strings.ToLower(c.String("sink"))
	}

	sink, err := openSink(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}
	defer sink.Close()

	counter, ok := sink.(storage.Counter)
	if !ok {
		return errors.New("sink " + env.Sink + " cannot count rows")
	}
	table := c.String("table")
	n, err := counter.Count(ctx, table)
	if err != nil {
		return fmt.Errorf("counting %s: %w", table, err)
	}
	fmt.Printf("Stored in %s:       %d\n", table, n)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
