// Package model defines shared data structures for the crawler service.
package model

import (
	"fmt"
	"time"
)

// SourceFormat identifies the parser strategy for a job source.
type SourceFormat string

const (
	FormatMarkdownTable SourceFormat = "markdown-table"
	FormatMarkdownList  SourceFormat = "markdown-list"
	FormatJSON          SourceFormat = "json"
	FormatHTML          SourceFormat = "html"
)

// ParseSourceFormat validates a format string. The short aliases "table" and
// "list" map to their markdown variants.
func ParseSourceFormat(s string) (SourceFormat, error) {
	switch s {
	case "markdown-table", "table":
		return FormatMarkdownTable, nil
	case "markdown-list", "list":
		return FormatMarkdownList, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown source format %q", s)
}

// RemoteType classifies a posting's work arrangement. Empty means unknown;
// callers must never substitute a guess.
type RemoteType string

const (
	RemoteOnsite RemoteType = "onsite"
	RemoteRemote RemoteType = "remote"
	RemoteHybrid RemoteType = "hybrid"
)

// CrawlStatus is the lifecycle state of a crawl_history row.
type CrawlStatus string

const (
	CrawlRunning   CrawlStatus = "running"
	CrawlCompleted CrawlStatus = "completed"
	CrawlFailed    CrawlStatus = "failed"
)

// JobSource mirrors a job_sources row: a configured external feed to poll.
type JobSource struct {
	ID            string
	Name          string // unique human label, doubles as the source-repo identifier
	URL           string
	Format        SourceFormat
	IntervalHours int
	IsActive      bool
	LastCrawledAt *time.Time
	NextCrawlAt   *time.Time
}

// Salary is a parsed compensation range.
type Salary struct {
	Min      int
	Max      int
	Currency string
}

// ParsedJob is a parser's transient output unit. Company, Title and ApplyURL
// are mandatory and validated before a row is emitted; everything else is
// best-effort. SourceID carries a source-provided unique id when the feed
// exposes one (JSON/HTML sources); markdown sources leave it empty.
type ParsedJob struct {
	Company     string
	Title       string
	ApplyURL    string
	SourceID    string
	Location    string
	Description string
	Salary      *Salary
	PostedAt    *time.Time
	Tags        []string
	ExternalID  string
}

// Company is the canonical employer entity. Name holds the normalized form
// and is the dedup key.
type Company struct {
	ID          string
	Name        string
	Website     string
	Description string
	Industry    string
	Size        string
}

// Job is a normalized posting. Uniqueness key is (SourceRepo, ExternalID):
// re-crawling the same source updates rather than duplicates.
type Job struct {
	ID              string
	CompanyID       string
	Title           string
	Description     string
	Locations       []string
	RemoteType      RemoteType
	SalaryMin       *int
	SalaryMax       *int
	SalaryCurrency  string
	ExperienceLevel string
	EmploymentType  string
	ApplyURL        string
	SourceURL       string
	SourceRepo      string
	ExternalID      string
	PostedAt        *time.Time
	Tags            []string
	IsActive        bool
}

// CrawlHistory is the audit record of one crawl attempt against one source.
// Inserted with status running at crawl start, finalized at the end.
type CrawlHistory struct {
	ID               string
	SourceID         string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Status           CrawlStatus
	JobsFound        int
	JobsInserted     int
	JobsUpdated      int
	CompaniesCreated int
	ErrorMessage     string
	Metadata         map[string]any
}
