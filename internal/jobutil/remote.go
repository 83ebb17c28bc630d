package jobutil

import (
	"strings"

	"jobpilot/crawler-service/internal/model"
)

// DetermineRemoteType classifies text by lowercase keyword match:
// "remote" combined with "hybrid" or "flexible" is hybrid, "remote" alone is
// remote, "onsite"/"on-site"/"office" is onsite. No keyword returns the
// empty RemoteType, which callers must treat as unknown rather than default
// to a guess.
func DetermineRemoteType(text string) model.RemoteType {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "remote") && (strings.Contains(t, "hybrid") || strings.Contains(t, "flexible")):
		return model.RemoteHybrid
	case strings.Contains(t, "remote"):
		return model.RemoteRemote
	case strings.Contains(t, "onsite"), strings.Contains(t, "on-site"), strings.Contains(t, "office"):
		return model.RemoteOnsite
	}
	return ""
}
