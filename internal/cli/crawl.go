package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"jobpilot/crawler-service/internal/crawler"
)

var crawlSourceName string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl cycle and exit",
	Long: `Crawl runs a single cycle against all active sources, or against one
source when --source is given. Intended for the external scheduler and for
targeted re-runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orch, cleanup, err := newOrchestrator(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if crawlSourceName != "" {
			_, err := orch.CrawlSourceByName(ctx, crawlSourceName)
			return err
		}

		err = orch.CrawlAll(ctx)
		if errors.Is(err, crawler.ErrLockHeld) {
			logger.Info("another crawl run is in progress, nothing to do")
			return nil
		}
		return err
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlSourceName, "source", "", "crawl only the source with this name")
}
