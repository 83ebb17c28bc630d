// Package parser implements the format-specific job-source parsers. Each
// parser consumes the raw fetched text of a source and produces normalized
// ParsedJob records plus per-block error strings. Row-level problems never
// abort a parse; only a total fetch failure is returned as an error.
package parser

import (
	"context"
	"fmt"

	"jobpilot/crawler-service/internal/model"
)

// Result is the outcome of one parse invocation against one source.
type Result struct {
	Jobs     []model.ParsedJob
	Errors   []string
	Metadata map[string]any
}

// Parser is the strategy contract. Parse fetches sourceURL and extracts
// jobs; it returns an error only when the source content could not be
// obtained at all.
type Parser interface {
	Parse(ctx context.Context, sourceURL string) (*Result, error)
}

// Factory selects a Parser implementation by declared source format. All
// strategies share one Fetcher so headers, timeout and retry policy stay
// uniform.
type Factory struct {
	fetcher    *Fetcher
	strategies map[model.SourceFormat]Parser
}

// NewFactory registers the built-in strategies. Adding a format is an
// additive change here; the orchestrator's dispatch never changes.
func NewFactory(fetcher *Fetcher) *Factory {
	return &Factory{
		fetcher: fetcher,
		strategies: map[model.SourceFormat]Parser{
			model.FormatMarkdownTable: &MarkdownTableParser{fetcher: fetcher},
			model.FormatMarkdownList:  &MarkdownListParser{fetcher: fetcher},
			model.FormatJSON:          &JSONParser{fetcher: fetcher},
			model.FormatHTML:          &HTMLParser{fetcher: fetcher},
		},
	}
}

// ForFormat returns the strategy registered for format.
func (f *Factory) ForFormat(format model.SourceFormat) (Parser, error) {
	p, ok := f.strategies[format]
	if !ok {
		return nil, fmt.Errorf("no parser registered for format %q", format)
	}
	return p, nil
}
