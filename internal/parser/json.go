package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

// JSONParser handles sources that publish a machine-readable feed, either a
// bare array of entries or an object wrapping one under "jobs". Feed entries
// usually carry their own id, which flows into ParsedJob.SourceID and makes
// the upsert key collision-free for these sources.
type JSONParser struct {
	fetcher *Fetcher
}

// jsonEntry tolerates the common field spellings across feeds.
type jsonEntry struct {
	ID          string   `json:"id"`
	Company     string   `json:"company"`
	CompanyName string   `json:"company_name"`
	Title       string   `json:"title"`
	Position    string   `json:"position"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Salary      string   `json:"salary"`
	PostedAt    string   `json:"posted_at"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
}

type jsonFeed struct {
	Jobs []jsonEntry `json:"jobs"`
}

// Parse fetches sourceURL and decodes the feed. An undecodable document is a
// block-level error recorded in the result, not a parse failure: the fetch
// itself succeeded and the crawl history should say so.
func (p *JSONParser) Parse(ctx context.Context, sourceURL string) (*Result, error) {
	content, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}

	res := &Result{Metadata: map[string]any{"format": string(model.FormatJSON)}}

	entries, err := decodeFeed([]byte(content))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decode feed: %v", err))
		return res, nil
	}
	res.Metadata["entries_found"] = len(entries)

	for _, e := range entries {
		company := firstNonEmpty(e.Company, e.CompanyName)
		title := firstNonEmpty(e.Title, e.Position)
		applyURL := firstNonEmpty(e.ApplyURL, e.URL)
		if company == "" || title == "" || !jobutil.IsValidURL(applyURL) {
			continue
		}

		pj := model.ParsedJob{
			Company:     company,
			Title:       title,
			ApplyURL:    applyURL,
			SourceID:    e.ID,
			Location:    e.Location,
			Description: e.Description,
			Tags:        e.Tags,
			Salary:      jobutil.ExtractSalary(e.Salary),
		}
		if t := parseFeedDate(firstNonEmpty(e.PostedAt, e.Date)); t != nil {
			pj.PostedAt = t
		}
		res.Jobs = append(res.Jobs, pj)
	}
	return res, nil
}

func decodeFeed(data []byte) ([]jsonEntry, error) {
	var entries []jsonEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	var feed jsonFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}
	if feed.Jobs == nil {
		return nil, fmt.Errorf("document is neither a job array nor a jobs object")
	}
	return feed.Jobs, nil
}

func parseFeedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
