package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/crawler-service/internal/model"
)

func TestJSON_BareArray(t *testing.T) {
	doc := `[
		{"id": "j-1", "company": "Acme", "title": "Backend Engineer",
		 "url": "https://acme.example.com/jobs/1", "location": "Berlin",
		 "salary": "$80k-$120k", "posted_at": "2026-08-12",
		 "tags": ["go", "postgres"]},
		{"company_name": "Globex", "position": "Data Scientist",
		 "apply_url": "https://globex.example.com/42",
		 "date": "2026-08-15T09:30:00Z"},
		{"company": "NoURL GmbH", "title": "Engineer"}
	]`
	res := parseDoc(t, model.FormatJSON, doc)

	require.Len(t, res.Jobs, 2)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 3, res.Metadata["entries_found"])

	acme := res.Jobs[0]
	assert.Equal(t, "j-1", acme.SourceID)
	assert.Equal(t, "Acme", acme.Company)
	assert.Equal(t, []string{"go", "postgres"}, acme.Tags)
	require.NotNil(t, acme.Salary)
	assert.Equal(t, 80000, acme.Salary.Min)
	require.NotNil(t, acme.PostedAt)
	assert.Equal(t, time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC), *acme.PostedAt)

	globex := res.Jobs[1]
	assert.Equal(t, "Globex", globex.Company)
	assert.Equal(t, "Data Scientist", globex.Title)
	assert.Equal(t, "https://globex.example.com/42", globex.ApplyURL)
	require.NotNil(t, globex.PostedAt)
}

func TestJSON_WrappedFeed(t *testing.T) {
	doc := `{"jobs": [
		{"company": "Acme", "title": "SRE", "url": "https://acme.example.com/sre"}
	]}`
	res := parseDoc(t, model.FormatJSON, doc)

	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "SRE", res.Jobs[0].Title)
}

// a document that decodes to neither shape is a block error, not a parse
// failure; the crawl history should record a completed run with errors.
func TestJSON_UndecodableDocument(t *testing.T) {
	res := parseDoc(t, model.FormatJSON, `{"meta": {"count": 0}}`)
	assert.Empty(t, res.Jobs)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "decode feed")
}

func TestJSON_InvalidSyntax(t *testing.T) {
	res := parseDoc(t, model.FormatJSON, "not json at all")
	assert.Empty(t, res.Jobs)
	require.Len(t, res.Errors, 1)
}
