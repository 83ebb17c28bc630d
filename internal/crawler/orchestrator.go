// Package crawler implements the crawl orchestrator: it iterates configured
// job sources, runs the matching parser, resolves companies and upserts jobs,
// recording counts and errors into crawl_history. Processing is strictly
// sequential (sources in last-crawled order, jobs in parse-emission order)
// with explicit pacing between persistence calls.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
	"jobpilot/crawler-service/internal/parser"
	"jobpilot/crawler-service/internal/store"
)

// Store is the persistence surface the orchestrator needs. *store.Postgres
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	LoadActiveSources(ctx context.Context) ([]model.JobSource, error)
	GetSourceByName(ctx context.Context, name string) (*model.JobSource, error)
	UpdateSourceCrawlTimes(ctx context.Context, id string, last, next time.Time) error

	FindCompanyByName(ctx context.Context, name string) (*model.Company, error)
	InsertCompany(ctx context.Context, c *model.Company) error

	FindJobID(ctx context.Context, sourceRepo, externalID string) (string, error)
	InsertJob(ctx context.Context, j *model.Job) error
	UpdateJob(ctx context.Context, id string, j *model.Job) error

	InsertCrawlHistory(ctx context.Context, h *model.CrawlHistory) error
	UpdateCrawlHistory(ctx context.Context, h *model.CrawlHistory) error
}

// Locker guards a whole crawl run. A nil Locker disables locking (tests,
// one-shot runs against a private store).
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// ErrLockHeld is returned by CrawlAll when another run owns the crawl lock.
var ErrLockHeld = errors.New("crawler: another crawl run is in progress")

// Config tunes the orchestrator's pacing.
type Config struct {
	RequestDelay time.Duration // minimum gap between persistence operations
	SourceDelay  time.Duration // politeness gap between sources
}

// Orchestrator drives crawl runs. The company cache lives on the instance
// and is reset at the start of every CrawlAll, giving it the documented
// lifetime of one crawl run. Instances are not safe for concurrent use.
type Orchestrator struct {
	store       Store
	parsers     *parser.Factory
	lock        Locker
	log         *slog.Logger
	limiter     *rate.Limiter
	sourceDelay time.Duration
	companies   map[string]*model.Company
	now         func() time.Time
}

// New constructs an Orchestrator.
func New(st Store, parsers *parser.Factory, lock Locker, logger *slog.Logger, cfg Config) *Orchestrator {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:       st,
		parsers:     parsers,
		lock:        lock,
		log:         logger.With(slog.String("component", "crawler")),
		limiter:     limiter,
		sourceDelay: cfg.SourceDelay,
		companies:   make(map[string]*model.Company),
		now:         time.Now,
	}
}

// CrawlAll crawls every active source in last-crawled-ascending order. A
// single source's failure is logged and does not stop the sources after it.
func (o *Orchestrator) CrawlAll(ctx context.Context) error {
	if o.lock != nil {
		ok, err := o.lock.Acquire(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLockHeld
		}
		defer func() {
			if err := o.lock.Release(context.WithoutCancel(ctx)); err != nil {
				o.log.Warn("failed to release crawl lock", slog.Any("error", err))
			}
		}()
	}

	// fresh cache per run
	o.companies = make(map[string]*model.Company)

	sources, err := o.store.LoadActiveSources(ctx)
	if err != nil {
		return fmt.Errorf("load active sources: %w", err)
	}
	o.log.Info("crawl run started", slog.Int("sources", len(sources)))

	for i, src := range sources {
		if i > 0 {
			if err := sleepCtx(ctx, o.sourceDelay); err != nil {
				return err
			}
		}
		if _, err := o.CrawlSource(ctx, src); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.log.Error("source crawl failed",
				slog.String("source", src.Name), slog.Any("error", err))
		}
	}

	o.log.Info("crawl run complete", slog.Int("sources", len(sources)))
	return nil
}

// CrawlSourceByName runs a targeted crawl for one source.
func (o *Orchestrator) CrawlSourceByName(ctx context.Context, name string) (*model.CrawlHistory, error) {
	src, err := o.store.GetSourceByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load source %q: %w", name, err)
	}
	return o.CrawlSource(ctx, *src)
}

// CrawlSource executes one crawl attempt against one source. The returned
// CrawlHistory reflects what was persisted; it is nil only when the audit
// anchor itself could not be created.
func (o *Orchestrator) CrawlSource(ctx context.Context, src model.JobSource) (*model.CrawlHistory, error) {
	log := o.log.With(slog.String("source", src.Name))

	h := &model.CrawlHistory{
		ID:        uuid.NewString(),
		SourceID:  src.ID,
		StartedAt: o.now().UTC(),
		Status:    model.CrawlRunning,
	}
	if err := o.store.InsertCrawlHistory(ctx, h); err != nil {
		// no audit anchor, no crawl
		return nil, fmt.Errorf("create crawl history: %w", err)
	}

	p, err := o.parsers.ForFormat(src.Format)
	if err != nil {
		return h, o.failCrawl(ctx, h, err)
	}

	res, err := p.Parse(ctx, src.URL)
	if err != nil {
		return h, o.failCrawl(ctx, h, fmt.Errorf("parse %s: %w", src.URL, err))
	}

	h.JobsFound = len(res.Jobs)
	if err := o.store.UpdateCrawlHistory(ctx, h); err != nil {
		log.Warn("progress update failed", slog.Any("error", err))
	}
	log.Info("parsed source",
		slog.Int("jobs_found", h.JobsFound),
		slog.Int("parser_errors", len(res.Errors)))

	for _, pj := range res.Jobs {
		pj.ExternalID = jobutil.GenerateExternalID(pj, src.Name)

		if err := o.limiter.Wait(ctx); err != nil {
			return h, o.failCrawl(ctx, h, err)
		}

		inserted, err := o.persistJob(ctx, &src, pj, h)
		if err != nil {
			log.Warn("job persist failed",
				slog.String("company", pj.Company),
				slog.String("title", pj.Title),
				slog.Any("error", err))
			continue
		}
		if inserted {
			h.JobsInserted++
		} else {
			h.JobsUpdated++
		}
	}

	now := o.now().UTC()
	next := now.Add(time.Duration(src.IntervalHours) * time.Hour)
	if err := o.store.UpdateSourceCrawlTimes(ctx, src.ID, now, next); err != nil {
		log.Warn("source timestamp update failed", slog.Any("error", err))
	}

	h.Status = model.CrawlCompleted
	h.CompletedAt = &now
	h.Metadata = map[string]any{"parser_errors": res.Errors}
	for k, v := range res.Metadata {
		h.Metadata[k] = v
	}
	if err := o.store.UpdateCrawlHistory(ctx, h); err != nil {
		return h, fmt.Errorf("finalize crawl history: %w", err)
	}

	log.Info("source crawl complete",
		slog.Int("jobs_found", h.JobsFound),
		slog.Int("jobs_inserted", h.JobsInserted),
		slog.Int("jobs_updated", h.JobsUpdated),
		slog.Int("companies_created", h.CompaniesCreated))
	return h, nil
}

// failCrawl finalizes the audit row as failed and passes cause through.
func (o *Orchestrator) failCrawl(ctx context.Context, h *model.CrawlHistory, cause error) error {
	now := o.now().UTC()
	h.Status = model.CrawlFailed
	h.CompletedAt = &now
	h.ErrorMessage = cause.Error()
	if err := o.store.UpdateCrawlHistory(context.WithoutCancel(ctx), h); err != nil {
		o.log.Warn("failed to record crawl failure", slog.Any("error", err))
	}
	return cause
}

// persistJob resolves the company and upserts one job. Returns whether the
// job was newly inserted (vs updated).
func (o *Orchestrator) persistJob(ctx context.Context, src *model.JobSource, pj model.ParsedJob, h *model.CrawlHistory) (bool, error) {
	company, created, err := o.getOrCreateCompany(ctx, pj.Company)
	if err != nil {
		return false, err
	}
	if created {
		h.CompaniesCreated++
	}

	job := buildJob(src, pj, company.ID)

	existingID, err := o.store.FindJobID(ctx, src.Name, pj.ExternalID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := o.store.InsertJob(ctx, job); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	default:
		if err := o.store.UpdateJob(ctx, existingID, job); err != nil {
			return false, err
		}
		return false, nil
	}
}

// getOrCreateCompany resolves a raw company name through the run-scoped
// cache, then the store, creating the company on first reference. The name
// is normalized identically at lookup and creation time; that symmetry is
// what keeps "Acme Inc." and "Acme Inc" from proliferating.
func (o *Orchestrator) getOrCreateCompany(ctx context.Context, rawName string) (*model.Company, bool, error) {
	name := jobutil.NormalizeCompanyName(rawName)
	if name == "" {
		return nil, false, fmt.Errorf("company name %q normalizes to empty", rawName)
	}

	if c, ok := o.companies[name]; ok {
		return c, false, nil
	}

	c, err := o.store.FindCompanyByName(ctx, name)
	if err == nil {
		o.companies[name] = c
		return c, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	c = &model.Company{Name: name, Size: store.DefaultCompanySize}
	if err := o.store.InsertCompany(ctx, c); err != nil {
		return nil, false, err
	}
	o.companies[name] = c
	return c, true, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
