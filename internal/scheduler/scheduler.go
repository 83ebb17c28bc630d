// Package scheduler wires up the cron job that periodically triggers a crawl
// of all active job sources.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"jobpilot/crawler-service/internal/crawler"
)

// Scheduler wraps robfig/cron and manages the crawl loop.
type Scheduler struct {
	cron *cron.Cron
	orch *crawler.Orchestrator
	log  *slog.Logger
	spec string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(orch *crawler.Orchestrator, logger *slog.Logger, intervalHours int) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(),
		orch: orch,
		log:  logger.With(slog.String("component", "scheduler")),
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one crawl
// immediately so the store is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCrawl(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", slog.String("spec", s.spec))

	go s.runCrawl(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running tick.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

func (s *Scheduler) runCrawl(ctx context.Context) {
	s.log.Info("crawl cycle started")
	err := s.orch.CrawlAll(ctx)
	switch {
	case errors.Is(err, crawler.ErrLockHeld):
		s.log.Info("crawl cycle skipped, another run holds the lock")
	case err != nil:
		s.log.Error("crawl cycle failed", slog.Any("error", err))
	default:
		s.log.Info("crawl cycle complete")
	}
}
