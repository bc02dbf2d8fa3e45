package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fashionetl/internal/config"
	"fashionetl/internal/crawler"
	"fashionetl/internal/db"
	"fashionetl/internal/loader"
	"fashionetl/internal/observability"
	"fashionetl/internal/pipeline"
	"fashionetl/internal/repository"
	"fashionetl/internal/storage"
)

var errAborted = errors.New("pipeline aborted before loading")

var rootCmd = &cobra.Command{
	Use:           "etl",
	Short:         "Scrape the Fashion Studio catalogue, clean it and load it into CSV, Google Sheets and PostgreSQL.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		initSlog(cfg.Verbose)
		return run(cmd.Context(), cfg)
	},
}

// go run ./cmd/etl
func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	runID := uuid.NewString()

	var opts []crawler.Option
	if cfg.Cache.RedisURL != "" {
		cache := crawler.NewRedisPageCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		defer cache.Close()
		opts = append(opts, crawler.WithCache(cache))
	}

	csvSink := &loader.CSVSink{Path: cfg.CSVPath}
	if cfg.Archive.Bucket != "" {
		archiver, err := storage.NewGCSArchiver(ctx, cfg.Archive, runID)
		if err != nil {
			slog.Warn("csv archival disabled", "err", err)
		} else {
			defer archiver.Close()
			csvSink.Archiver = archiver
		}
	}

	runs, closeRuns := openRunStore(ctx, cfg.Postgres)
	defer closeRuns()

	sum := pipeline.Run(ctx, pipeline.Deps{
		RunID:        runID,
		Extractor:    crawler.NewExtractor(cfg.Scrape, opts...),
		ExchangeRate: cfg.Scrape.ExchangeRate,
		Sinks: []loader.Sink{
			csvSink,
			loader.NewSheetsSink(cfg.Sheets),
			loader.NewPostgresSink(cfg.Postgres),
		},
		Runs: runs,
	})

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := observability.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			slog.Warn("failed to push metrics", "gateway", cfg.Metrics.PushgatewayURL, "err", err)
		}
	}

	if sum.Outcome() == pipeline.OutcomeAborted {
		return errAborted
	}
	return nil
}

// openRunStore returns a nil store when the database is unreachable, so the
// run goes unrecorded instead of failing.
func openRunStore(ctx context.Context, cfg config.Postgres) (pipeline.RunStore, func()) {
	sqlDB, err := db.New(cfg.DSN())
	if err != nil {
		slog.Warn("run history disabled", "err", err)
		return nil, func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		slog.Warn("run history disabled", "err", err)
		sqlDB.Close()
		return nil, func() {}
	}

	repo := &repository.RunRepository{DB: sqlDB, Table: cfg.RunTable}
	if err := repo.EnsureTable(ctx); err != nil {
		slog.Warn("run history disabled", "table", cfg.RunTable, "err", err)
		sqlDB.Close()
		return nil, func() {}
	}
	return repo, func() { sqlDB.Close() }
}
