package jobutil

import "strings"

// techVocabulary is the fixed keyword list scanned by ExtractTechTags.
// Deliberately a flat membership filter, not NLP: terms absent from this
// list are never tagged.
var techVocabulary = []string{
	// languages
	"python", "javascript", "typescript", "golang", "go", "java", "kotlin",
	"swift", "rust", "ruby", "php", "scala", "elixir", "c++", "c#",
	// frameworks
	"react", "vue", "angular", "svelte", "node", "django", "flask", "rails",
	"spring", "laravel", "nextjs", "graphql",
	// cloud / infra
	"aws", "azure", "gcp", "kubernetes", "docker", "terraform", "ansible",
	"postgresql", "postgres", "mysql", "mongodb", "redis", "kafka",
	"elasticsearch",
	// ML
	"tensorflow", "pytorch", "machine learning", "deep learning", "llm",
	"data science",
}

// ExtractTechTags returns the subset of the vocabulary present in the
// combined lowercased title + description. Matches are on token boundaries
// so "go" does not fire inside "google".
func ExtractTechTags(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	var tags []string
	for _, term := range techVocabulary {
		if containsTerm(text, term) {
			tags = append(tags, term)
		}
	}
	return tags
}

// containsTerm reports whether term occurs in text delimited by non-token
// characters. '+' and '#' count as token characters so "c++" and "c#" match
// exactly.
func containsTerm(text, term string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isTokenChar(text[i-1])) && (end == len(text) || !isTokenChar(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isTokenChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '+' || b == '#'
}
