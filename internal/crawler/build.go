package crawler

import (
	"strings"

	"jobpilot/crawler-service/internal/jobutil"
	"jobpilot/crawler-service/internal/model"
)

// buildJob assembles a persistable Job from a parsed row. Derived fields
// (locations, remote type, tags, experience level, employment type) are
// recomputed on every crawl, so an updated source row fully replaces the
// stored shape.
func buildJob(src *model.JobSource, pj model.ParsedJob, companyID string) *model.Job {
	title := strings.TrimSpace(pj.Title)
	combined := title + " " + pj.Location + " " + pj.Description

	job := &model.Job{
		CompanyID:       companyID,
		Title:           title,
		Description:     strings.TrimSpace(pj.Description),
		Locations:       jobutil.ParseLocation(pj.Location),
		RemoteType:      jobutil.DetermineRemoteType(combined),
		ExperienceLevel: experienceLevel(title),
		EmploymentType:  employmentType(combined),
		ApplyURL:        pj.ApplyURL,
		SourceURL:       src.URL,
		SourceRepo:      src.Name,
		ExternalID:      pj.ExternalID,
		PostedAt:        pj.PostedAt,
		Tags:            mergeTags(pj.Tags, jobutil.ExtractTechTags(title, pj.Description)),
		IsActive:        true,
	}

	if pj.Salary != nil {
		min, max := pj.Salary.Min, pj.Salary.Max
		job.SalaryMin = &min
		job.SalaryMax = &max
		job.SalaryCurrency = pj.Salary.Currency
	}
	return job
}

func experienceLevel(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "intern"), strings.Contains(t, "junior"),
		strings.Contains(t, "graduate"), hasToken(t, "jr"):
		return "junior"
	case strings.Contains(t, "senior"), strings.Contains(t, "staff"),
		strings.Contains(t, "principal"), strings.Contains(t, "lead"),
		hasToken(t, "sr"):
		return "senior"
	}
	return ""
}

// hasToken matches tok as a whole word so "sr" does not fire inside "sre".
func hasToken(text, tok string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if f == tok {
			return true
		}
	}
	return false
}

func employmentType(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "intern"):
		return "internship"
	case strings.Contains(t, "contract"), strings.Contains(t, "freelance"):
		return "contract"
	case strings.Contains(t, "part-time"), strings.Contains(t, "part time"):
		return "part-time"
	}
	return "full-time"
}

func mergeTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var tags []string
	for _, t := range append(append([]string{}, a...), b...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
