package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

// HTMLParser extracts jobs from HTML pages whose listings are laid out as
// tables with header cells, the rendered sibling of the markdown-table
// format. Each <table> is parsed independently so one broken table does not
// abort the rest of the page.
type HTMLParser struct {
	fetcher *Fetcher
}

// Parse fetches sourceURL and walks every table in the document. Relative
// application links are resolved against the source URL.
func (p *HTMLParser) Parse(ctx context.Context, sourceURL string) (*Result, error) {
	content, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, _ := url.Parse(sourceURL)
	res := &Result{Metadata: map[string]any{"format": string(model.FormatHTML)}}
	tables := 0

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		tables++
		jobs, err := p.parseHTMLTable(table, base)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("table %d: %v", i+1, err))
			return
		}
		res.Jobs = append(res.Jobs, jobs...)
	})

	res.Metadata["tables_found"] = tables
	return res, nil
}

func (p *HTMLParser) parseHTMLTable(table *goquery.Selection, base *url.URL) ([]model.ParsedJob, error) {
	var header []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.TrimSpace(th.Text()))
	})
	if len(header) == 0 {
		// header-less tables are layout scaffolding, not listings
		return nil, nil
	}

	cols := mapColumns(header)
	if cols.company < 0 && cols.title < 0 {
		return nil, fmt.Errorf("no company or role column in header %v", header)
	}

	var jobs []model.ParsedJob
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return // header row
		}

		text := func(i int) string {
			if i < 0 || i >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		applyURL := p.cellLink(cells, cols.apply, base)
		if applyURL == "" {
			for i := 0; i < cells.Length(); i++ {
				if applyURL = p.cellLink(cells, i, base); applyURL != "" {
					break
				}
			}
		}

		company := text(cols.company)
		title := text(cols.title)
		if company == "" || title == "" || !jobutil.IsValidURL(applyURL) {
			return
		}

		pj := model.ParsedJob{
			Company:  company,
			Title:    title,
			ApplyURL: applyURL,
			Location: text(cols.location),
		}
		if id, ok := tr.Attr("data-job-id"); ok {
			pj.SourceID = id
		}
		if cols.salary >= 0 {
			pj.Salary = jobutil.ExtractSalary(text(cols.salary))
		}
		jobs = append(jobs, pj)
	})
	return jobs, nil
}

// cellLink returns the absolute href of the first anchor in cell i.
func (p *HTMLParser) cellLink(cells *goquery.Selection, i int, base *url.URL) string {
	if i < 0 || i >= cells.Length() {
		return ""
	}
	href, ok := cells.Eq(i).Find("a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			return base.ResolveReference(ref).String()
		}
	}
	return href
}
