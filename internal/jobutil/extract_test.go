package jobutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Berlin", []string{"Berlin"}},
		{"Berlin, Munich, Hamburg", []string{"Berlin", "Munich", "Hamburg"}},
		{"Berlin; Munich | Remote", []string{"Berlin", "Munich", "Remote"}},
		{"  Berlin ,  , Munich ", []string{"Berlin", "Munich"}},
		{"N/A", nil},
		{"TBD, Berlin", []string{"Berlin"}},
		{"", nil},
		{" - ", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, jobutil.ParseLocation(c.in), "input %q", c.in)
	}
}

func TestParseLocation_PreservesOrderAndDuplicates(t *testing.T) {
	got := jobutil.ParseLocation("Remote, Berlin, Remote")
	assert.Equal(t, []string{"Remote", "Berlin", "Remote"}, got)
}

func TestDetermineRemoteType(t *testing.T) {
	cases := []struct {
		in   string
		want model.RemoteType
	}{
		{"Remote (hybrid possible)", model.RemoteHybrid},
		{"Remote / flexible hours", model.RemoteHybrid},
		{"Fully Remote", model.RemoteRemote},
		{"Onsite in Berlin", model.RemoteOnsite},
		{"On-site", model.RemoteOnsite},
		{"Office first", model.RemoteOnsite},
		{"Berlin, Germany", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, jobutil.DetermineRemoteType(c.in), "input %q", c.in)
	}
}

func TestExtractTechTags(t *testing.T) {
	tags := jobutil.ExtractTechTags(
		"Senior Go Developer",
		"You will build services in Go and Python on Kubernetes, backed by PostgreSQL and Redis.")
	assert.ElementsMatch(t, []string{"go", "python", "kubernetes", "postgresql", "redis"}, tags)
}

func TestExtractTechTags_TokenBoundaries(t *testing.T) {
	// "go" must not fire inside "google", "java" not inside "javascript"
	tags := jobutil.ExtractTechTags("Engineer", "We use Google services and write JavaScript.")
	assert.NotContains(t, tags, "go")
	assert.NotContains(t, tags, "java")
	assert.Contains(t, tags, "javascript")
}

func TestExtractTechTags_NoMatches(t *testing.T) {
	assert.Empty(t, jobutil.ExtractTechTags("Accountant", "Bookkeeping and payroll."))
}
