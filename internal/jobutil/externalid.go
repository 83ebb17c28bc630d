package jobutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"jobpilot/crawler-service/internal/model"
)

// GenerateExternalID derives the dedup/upsert key for a parsed job within a
// source repo. When the source supplied its own unique id, that id is
// authoritative and two postings with identical titles never collide. Without
// one the id falls back to the normalized (company, title) pair, so
// indistinguishable rows from the same source collapse into a single job.
// That is the intended last-write-wins behavior for markdown feeds.
//
// The function is pure: identical inputs always yield the identical id.
func GenerateExternalID(job model.ParsedJob, sourceRepo string) string {
	var key string
	if job.SourceID != "" {
		key = "id\x00" + sourceRepo + "\x00" + job.SourceID
	} else {
		key = strings.ToLower(NormalizeCompanyName(job.Company)) + "\x00" +
			strings.ToLower(NormalizeJobTitle(job.Title)) + "\x00" + sourceRepo
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
