package parser

import (
	"context"
	"fmt"
	"strings"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

// MarkdownTableParser extracts jobs from pipe-delimited Markdown tables, the
// dominant format of awesome-jobs style repositories. A document may contain
// several independent tables; a structurally broken table is recorded as an
// error without aborting the tables that follow it.
type MarkdownTableParser struct {
	fetcher *Fetcher
}

// Parse fetches sourceURL and walks it line by line. A header row is any
// pipe-delimited line containing the literal "Company" or "Role"; the table
// body runs until the first empty or pipe-free line.
func (p *MarkdownTableParser) Parse(ctx context.Context, sourceURL string) (*Result, error) {
	content, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}

	res := &Result{Metadata: map[string]any{"format": string(model.FormatMarkdownTable)}}

	var table []string
	inTable := false
	tables := 0

	flush := func() {
		if len(table) < 2 {
			table = nil
			return
		}
		tables++
		jobs, err := parseTable(table)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
		} else {
			res.Jobs = append(res.Jobs, jobs...)
		}
		table = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !inTable {
			if strings.Contains(line, "|") &&
				(strings.Contains(line, "Company") || strings.Contains(line, "Role")) {
				inTable = true
				table = append(table, line)
			}
			continue
		}
		if line == "" || !strings.Contains(line, "|") {
			inTable = false
			flush()
			continue
		}
		table = append(table, line)
	}
	flush()

	res.Metadata["tables_found"] = tables
	return res, nil
}

// tableColumns maps header names to cell indices. -1 means absent.
type tableColumns struct {
	company  int
	title    int
	location int
	apply    int
	salary   int
}

func mapColumns(header []string) tableColumns {
	cols := tableColumns{company: -1, title: -1, location: -1, apply: -1, salary: -1}
	match := func(cell string, keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(cell, kw) {
				return true
			}
		}
		return false
	}
	for i, cell := range header {
		cell = strings.ToLower(stripMarkdown(cell))
		switch {
		case cols.company < 0 && match(cell, "company"):
			cols.company = i
		case cols.title < 0 && match(cell, "role", "title", "position"):
			cols.title = i
		case cols.location < 0 && match(cell, "location", "where", "city"):
			cols.location = i
		case cols.apply < 0 && match(cell, "apply", "application", "link", "url"):
			cols.apply = i
		case cols.salary < 0 && match(cell, "salary", "compensation", "pay"):
			cols.salary = i
		}
	}
	return cols
}

// parseTable extracts jobs from one closed table. A table exposing neither a
// company nor a role column cannot yield jobs and is a hard error for the
// caller to record. Data rows missing a mandatory field (company, title,
// valid application URL) are continuation or decorative rows and are skipped
// silently, not counted as errors.
func parseTable(lines []string) ([]model.ParsedJob, error) {
	header := splitCells(lines[0])
	cols := mapColumns(header)
	if cols.company < 0 && cols.title < 0 {
		return nil, fmt.Errorf("table %q has neither a company nor a role column", lines[0])
	}

	cell := func(cells []string, i int) string {
		if i >= 0 && i < len(cells) {
			return cells[i]
		}
		return ""
	}

	var jobs []model.ParsedJob
	for _, row := range lines[1:] {
		if isSeparatorRow(row) {
			continue
		}
		cells := splitCells(row)

		company := stripMarkdown(cell(cells, cols.company))
		title := stripMarkdown(cell(cells, cols.title))
		location := stripMarkdown(cell(cells, cols.location))

		applyURL := extractURL(cell(cells, cols.apply))
		if applyURL == "" {
			// fall back to the first URL embedded anywhere in the row
			for _, c := range cells {
				if applyURL = extractURL(c); applyURL != "" {
					break
				}
			}
		}

		if company == "" || title == "" || !jobutil.IsValidURL(applyURL) {
			continue
		}

		pj := model.ParsedJob{
			Company:  company,
			Title:    title,
			ApplyURL: applyURL,
			Location: location,
		}
		if cols.salary >= 0 {
			pj.Salary = jobutil.ExtractSalary(cell(cells, cols.salary))
		}
		if pj.Salary == nil {
			// URLs are removed first so path segments like /jobs/80-120
			// cannot masquerade as a range.
			pj.Salary = jobutil.ExtractSalary(bareURLRe.ReplaceAllString(row, ""))
		}
		jobs = append(jobs, pj)
	}
	return jobs, nil
}
