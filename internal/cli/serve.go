package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobpilot/crawler-service/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crawl scheduler as a long-lived daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orch, cleanup, err := newOrchestrator(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		sched := scheduler.New(orch, logger, cfg.CrawlIntervalHours)
		if err := sched.Start(ctx); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down")
		sched.Stop()
		logger.Info("stopped")
		return nil
	},
}
