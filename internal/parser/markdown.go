package parser

import (
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)\s]+)\)`)
	anyLinkRe      = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]*)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s|)\]>]+`)
	headingMarkRe  = regexp.MustCompile(`^#+\s*`)
	emphasisRe     = regexp.MustCompile("[*_`~]")
)

// stripMarkdown reduces a cell or list item to plain text: link syntax keeps
// its anchor text, bold/italic/code markers and heading markers are dropped.
func stripMarkdown(s string) string {
	s = anyLinkRe.ReplaceAllString(s, "$1")
	s = headingMarkRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractURL pulls the first http(s) URL out of a text fragment, preferring
// markdown link syntax over a bare URL token.
func extractURL(s string) string {
	if m := markdownLinkRe.FindStringSubmatch(s); m != nil {
		return m[2]
	}
	return bareURLRe.FindString(s)
}

// splitCells breaks a pipe-delimited row into trimmed cell texts. Outer
// pipes are optional in the source material.
func splitCells(row string) []string {
	row = strings.Trim(strings.TrimSpace(row), "|")
	parts := strings.Split(row, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparatorRow recognizes the |---|:---:| row under a table header.
func isSeparatorRow(row string) bool {
	for _, cell := range splitCells(row) {
		if cell == "" {
			continue
		}
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return true
}
