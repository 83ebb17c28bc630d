// Package cli provides the command-line interface for the crawler service.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"jobpilot/crawler-service/internal/config"
	"jobpilot/crawler-service/internal/crawler"
	"jobpilot/crawler-service/internal/db"
	"jobpilot/crawler-service/internal/parser"
	"jobpilot/crawler-service/internal/store"
)

// Version is set at build time.
var Version = "1.0.0"

// crawlLockTTL caps how long a crashed run can block the next one.
const crawlLockTTL = 2 * time.Hour

var (
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
)

var rootCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Job-source crawler for the jobpilot dashboard",
	Long: `Crawler polls configured job sources (markdown tables and lists, JSON
feeds, HTML listings), normalizes their rows into job records and upserts
them into the shared Postgres store, writing a crawl_history audit row per
attempt.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger = config.SetupLogger(cfg.LogLevel)

		pool, err = db.NewPostgresPool(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		logger.Info("postgres connected")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

// newOrchestrator assembles the crawl pipeline shared by serve and crawl.
func newOrchestrator(ctx context.Context, withLock bool) (*crawler.Orchestrator, func(), error) {
	fetcher := parser.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.SourceFetchToken)
	factory := parser.NewFactory(fetcher)
	st := store.New(pool)

	var lock crawler.Locker
	cleanup := func() {}
	if withLock {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("redis connected")
		lock = db.NewCrawlLock(rdb, crawlLockTTL)
		cleanup = func() { rdb.Close() }
	}

	orch := crawler.New(st, factory, lock, logger, crawler.Config{
		RequestDelay: cfg.RequestDelay,
		SourceDelay:  cfg.SourceDelay,
	})
	return orch, cleanup, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(seedCmd)
}
