// Package store implements the persistence contract against Postgres. Each
// entity gets exactly the operations the crawl pipeline needs: sources are
// read and have their crawl timestamps advanced, companies are looked up and
// created, jobs are upserted by (source_repo, external_id), and crawl_history
// rows anchor the audit trail.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpilot/crawler-service/internal/model"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("store: not found")

// DefaultCompanySize is assigned to companies created lazily during a crawl.
// An explicit default: the crawler has no basis for inferring size from a
// markdown row.
const DefaultCompanySize = "startup"

// Postgres is the pgx-backed store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// ── job_sources ────────────────────────────────────────────────────────────

// LoadActiveSources returns all active sources, least-recently-crawled first
// with never-crawled sources at the front.
func (s *Postgres) LoadActiveSources(ctx context.Context) ([]model.JobSource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, url, format, interval_hours, is_active, last_crawled_at, next_crawl_at
		 FROM job_sources
		 WHERE is_active = true
		 ORDER BY last_crawled_at ASC NULLS FIRST, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query job_sources: %w", err)
	}
	defer rows.Close()

	var sources []model.JobSource
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// GetSourceByName looks up one source for targeted crawls.
func (s *Postgres) GetSourceByName(ctx context.Context, name string) (*model.JobSource, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, url, format, interval_hours, is_active, last_crawled_at, next_crawl_at
		 FROM job_sources
		 WHERE name = $1`, name)
	src, err := scanSource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

// UpsertSource registers or refreshes a source definition, keyed by name.
// Used by seeding; crawl-time code never touches these columns.
func (s *Postgres) UpsertSource(ctx context.Context, src model.JobSource) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_sources (id, name, url, format, interval_hours, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE
		 SET url = EXCLUDED.url,
		     format = EXCLUDED.format,
		     interval_hours = EXCLUDED.interval_hours,
		     is_active = EXCLUDED.is_active`,
		orNewID(src.ID), src.Name, src.URL, string(src.Format), src.IntervalHours, src.IsActive)
	if err != nil {
		return fmt.Errorf("upsert job_source %q: %w", src.Name, err)
	}
	return nil
}

// UpdateSourceCrawlTimes advances last_crawled_at/next_crawl_at, the only
// source columns this subsystem mutates.
func (s *Postgres) UpdateSourceCrawlTimes(ctx context.Context, id string, last, next time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE job_sources SET last_crawled_at = $2, next_crawl_at = $3 WHERE id = $1`,
		id, last, next)
	if err != nil {
		return fmt.Errorf("update job_source crawl times: %w", err)
	}
	return nil
}

// ── companies ──────────────────────────────────────────────────────────────

// FindCompanyByName looks up a company by its exact normalized name.
func (s *Postgres) FindCompanyByName(ctx context.Context, name string) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(website, ''), COALESCE(description, ''),
		        COALESCE(industry, ''), COALESCE(size_category, '')
		 FROM companies
		 WHERE name = $1`, name).
		Scan(&c.ID, &c.Name, &c.Website, &c.Description, &c.Industry, &c.Size)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query company %q: %w", name, err)
	}
	return &c, nil
}

// InsertCompany creates a company. The caller passes the normalized name;
// the store does not re-normalize.
func (s *Postgres) InsertCompany(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Size == "" {
		c.Size = DefaultCompanySize
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, website, description, industry, size_category)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)`,
		c.ID, c.Name, c.Website, c.Description, c.Industry, c.Size)
	if err != nil {
		return fmt.Errorf("insert company %q: %w", c.Name, err)
	}
	return nil
}

// ── jobs ───────────────────────────────────────────────────────────────────

// FindJobID returns the primary id of the job with the given upsert key.
func (s *Postgres) FindJobID(ctx context.Context, sourceRepo, externalID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM jobs WHERE source_repo = $1 AND external_id = $2`,
		sourceRepo, externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query job (%s, %s): %w", sourceRepo, externalID, err)
	}
	return id, nil
}

// InsertJob creates a job row.
func (s *Postgres) InsertJob(ctx context.Context, j *model.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, company_id, title, description, locations, remote_type,
		                   salary_min, salary_max, salary_currency, experience_level,
		                   employment_type, apply_url, source_url, source_repo,
		                   external_id, posted_at, tags, is_active)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''),
		         NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14, $15, $16, $17, $18)`,
		j.ID, j.CompanyID, j.Title, j.Description, j.Locations, string(j.RemoteType),
		j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.ExperienceLevel,
		j.EmploymentType, j.ApplyURL, j.SourceURL, j.SourceRepo,
		j.ExternalID, j.PostedAt, j.Tags, j.IsActive)
	if err != nil {
		return fmt.Errorf("insert job %q: %w", j.Title, err)
	}
	return nil
}

// UpdateJob rewrites the job shape for an existing row, keeping id and the
// upsert key.
func (s *Postgres) UpdateJob(ctx context.Context, id string, j *model.Job) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET company_id = $2, title = $3, description = NULLIF($4, ''), locations = $5,
		     remote_type = NULLIF($6, ''), salary_min = $7, salary_max = $8,
		     salary_currency = NULLIF($9, ''), experience_level = NULLIF($10, ''),
		     employment_type = NULLIF($11, ''), apply_url = $12, source_url = $13,
		     posted_at = $14, tags = $15, is_active = $16, updated_at = now()
		 WHERE id = $1`,
		id, j.CompanyID, j.Title, j.Description, j.Locations, string(j.RemoteType),
		j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.ExperienceLevel,
		j.EmploymentType, j.ApplyURL, j.SourceURL, j.PostedAt, j.Tags, j.IsActive)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	return nil
}

// ── crawl_history ──────────────────────────────────────────────────────────

// InsertCrawlHistory creates the audit anchor for a crawl attempt.
func (s *Postgres) InsertCrawlHistory(ctx context.Context, h *model.CrawlHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO crawl_history (id, source_id, started_at, status,
		                            jobs_found, jobs_inserted, jobs_updated, companies_created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.SourceID, h.StartedAt, string(h.Status),
		h.JobsFound, h.JobsInserted, h.JobsUpdated, h.CompaniesCreated)
	if err != nil {
		return fmt.Errorf("insert crawl_history: %w", err)
	}
	return nil
}

// UpdateCrawlHistory writes progress counters and the final status.
func (s *Postgres) UpdateCrawlHistory(ctx context.Context, h *model.CrawlHistory) error {
	metadata, err := json.Marshal(h.Metadata)
	if err != nil {
		return fmt.Errorf("marshal crawl metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE crawl_history
		 SET status = $2, completed_at = $3, jobs_found = $4, jobs_inserted = $5,
		     jobs_updated = $6, companies_created = $7, error_message = NULLIF($8, ''),
		     metadata = $9::jsonb
		 WHERE id = $1`,
		h.ID, string(h.Status), h.CompletedAt, h.JobsFound, h.JobsInserted,
		h.JobsUpdated, h.CompaniesCreated, h.ErrorMessage, string(metadata))
	if err != nil {
		return fmt.Errorf("update crawl_history %s: %w", h.ID, err)
	}
	return nil
}

// ── helpers ────────────────────────────────────────────────────────────────

func scanSource(row pgx.Row) (model.JobSource, error) {
	var src model.JobSource
	var format string
	err := row.Scan(&src.ID, &src.Name, &src.URL, &format, &src.IntervalHours,
		&src.IsActive, &src.LastCrawledAt, &src.NextCrawlAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return src, err
		}
		return src, fmt.Errorf("scan job_source: %w", err)
	}
	src.Format = model.SourceFormat(format)
	return src, nil
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
