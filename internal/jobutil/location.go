package jobutil

import "strings"

// placeholder tokens that carry no location information.
var locationPlaceholders = map[string]struct{}{
	"n/a": {},
	"na":  {},
	"tbd": {},
	"-":   {},
	"—":   {},
}

// ParseLocation splits a location cell on comma/semicolon/pipe, trims each
// segment and drops empties and placeholders. Source order is preserved and
// duplicates are kept: a posting listed in the same city twice is the
// source's statement, not ours to clean up.
func ParseLocation(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})

	locations := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if _, skip := locationPlaceholders[strings.ToLower(seg)]; skip {
			continue
		}
		locations = append(locations, seg)
	}
	if len(locations) == 0 {
		return nil
	}
	return locations
}
