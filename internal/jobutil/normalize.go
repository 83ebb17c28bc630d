// Package jobutil provides pure text-normalization helpers shared by the
// parsers and the crawl orchestrator. No function here performs I/O.
package jobutil

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	legalSuffixRe = regexp.MustCompile(`(?i)[\s,]+(inc|llc|corp|corporation|ltd|limited|co|company)\.?$`)
	titleCharRe   = regexp.MustCompile(`[^\w\s\-()]`)
	seniorityRe   = regexp.MustCompile(`(?i)\b(jr|sr|junior|senior)\b`)
)

// NormalizeCompanyName trims, collapses internal whitespace and strips
// trailing legal-entity suffixes. Suffixes are stripped to a fixed point so
// the function is idempotent: "Acme Co, Inc." and "Acme Co" both normalize
// to "Acme".
func NormalizeCompanyName(name string) string {
	name = whitespaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	for {
		stripped := strings.TrimSpace(legalSuffixRe.ReplaceAllString(name, ""))
		if stripped == name || stripped == "" {
			return name
		}
		name = stripped
	}
}

// NormalizeJobTitle trims, collapses whitespace and drops characters outside
// word/space/hyphen/parens. Standalone seniority abbreviations are lowercased
// so "Sr. Engineer" and "sr Engineer" compare equal; the rest of the casing
// is preserved.
func NormalizeJobTitle(title string) string {
	title = titleCharRe.ReplaceAllString(title, "")
	title = whitespaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
	return seniorityRe.ReplaceAllStringFunc(title, strings.ToLower)
}

// IsValidURL reports whether s parses as an absolute http(s) URL. Invalid
// syntax yields false, never an error.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
