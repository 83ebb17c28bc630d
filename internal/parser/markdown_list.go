package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

// MarkdownListParser extracts jobs from Markdown bullet or numbered lists.
// An item must carry an extractable URL; items without one are skipped
// outright since nothing could be applied to.
type MarkdownListParser struct {
	fetcher *Fetcher
}

var listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.*)$`)

// listPattern attempts to split a URL-stripped item text into its parts.
type listPattern func(text string) (company, title, location string, ok bool)

// listPatterns returns the positional matchers in precedence order. The
// first match wins; ordering is part of the contract and covered by tests.
func listPatterns() []listPattern {
	companyTitleLocation := regexp.MustCompile(`^(.+?)\s+[-–]\s+(.+?)\s+[-–]\s+(.+)$`)
	companyColonTitle := regexp.MustCompile(`^(.+?):\s*(.+?)\s*\(([^)]+)\)$`)
	titleAtCompany := regexp.MustCompile(`^(.+?)\s+at\s+(.+?)(?:\s+[-–]\s+(.+))?$`)

	return []listPattern{
		// "Company - Title - Location"
		func(text string) (string, string, string, bool) {
			m := companyTitleLocation.FindStringSubmatch(text)
			if m == nil {
				return "", "", "", false
			}
			return m[1], m[2], m[3], true
		},
		// "Company: Title (Location)"
		func(text string) (string, string, string, bool) {
			m := companyColonTitle.FindStringSubmatch(text)
			if m == nil {
				return "", "", "", false
			}
			return m[1], m[2], m[3], true
		},
		// "Title at Company [- Location]"
		func(text string) (string, string, string, bool) {
			m := titleAtCompany.FindStringSubmatch(text)
			if m == nil {
				return "", "", "", false
			}
			return m[2], m[1], m[3], true
		},
	}
}

// linkNoiseAnchors are markdown link texts that carry no job information.
// Links with a meaningful anchor ("[Acme](…)") keep their text; these are
// dropped entirely.
var linkNoiseAnchors = map[string]struct{}{
	"apply": {}, "apply here": {}, "link": {}, "here": {}, "job": {},
	"posting": {}, "details": {},
}

// stripURLs reduces a list item to pattern-matchable plain text. Markdown
// links are replaced by their anchor text unless the anchor is noise, bare
// URLs are removed, and leftover punctuation around the edges is trimmed.
func stripURLs(item string) string {
	text := anyLinkRe.ReplaceAllStringFunc(item, func(link string) string {
		sm := anyLinkRe.FindStringSubmatch(link)
		anchor := strings.TrimSpace(sm[1])
		if _, noise := linkNoiseAnchors[strings.ToLower(anchor)]; noise {
			return ""
		}
		return anchor
	})
	text = bareURLRe.ReplaceAllString(text, "")
	text = stripMarkdown(text)
	text = strings.ReplaceAll(text, "()", "")
	return strings.Trim(text, " -–:,")
}

// splitListFallback splits on -/:/, and takes the first two non-empty
// segments as company and title, the remainder joined as location.
func splitListFallback(text string) (company, title, location string, ok bool) {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '-' || r == ':' || r == ','
	})
	var parts []string
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) < 2 {
		return "", "", "", false
	}
	return parts[0], parts[1], strings.Join(parts[2:], ", "), true
}

// Parse fetches sourceURL and extracts one job per matching list item.
func (p *MarkdownListParser) Parse(ctx context.Context, sourceURL string) (*Result, error) {
	content, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}

	res := &Result{Metadata: map[string]any{"format": string(model.FormatMarkdownList)}}
	patterns := listPatterns()
	items := 0

	for _, line := range strings.Split(content, "\n") {
		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items++

		applyURL := extractURL(m[1])
		if !jobutil.IsValidURL(applyURL) {
			continue
		}

		text := stripURLs(m[1])

		var company, title, location string
		matched := false
		for _, pattern := range patterns {
			if company, title, location, matched = pattern(text); matched {
				break
			}
		}
		if !matched {
			company, title, location, matched = splitListFallback(text)
		}
		if !matched {
			continue
		}

		company = strings.TrimSpace(company)
		title = strings.TrimSpace(title)
		if company == "" || title == "" {
			continue
		}

		pj := model.ParsedJob{
			Company:  company,
			Title:    title,
			ApplyURL: applyURL,
			Location: strings.TrimSpace(location),
			Salary:   jobutil.ExtractSalary(text),
		}
		res.Jobs = append(res.Jobs, pj)
	}

	res.Metadata["items_found"] = items
	return res, nil
}
