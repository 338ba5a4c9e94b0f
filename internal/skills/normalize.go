// Package skills reconciles skill names from the job-posting API and model
// extraction into canonical per-posting sets, and computes match percentages
// against seeker skills. Comparison always happens on normalized tokens;
// display strings keep their first-seen form.
package skills

import (
	"regexp"
	"strings"
)

// aliases maps spellings and Cyrillic transliterations to one canonical
// token, so "питон" and "Python" count as the same skill.
var aliases = map[string]string{
	"питон":      "python",
	"пайтон":     "python",
	"python":     "python",
	"джанго":     "django",
	"django":     "django",
	"фласк":      "flask",
	"flask":      "flask",
	"фастапи":    "fastapi",
	"fastapi":    "fastapi",
	"джс":        "javascript",
	"javascript": "javascript",
	"джаваскрипт": "javascript",
	"тайпскрипт": "typescript",
	"typescript": "typescript",
	"реакт":      "react",
	"react":      "react",
	"вью":        "vue",
	"vue":        "vue",
	"гит":        "git",
	"git":        "git",
	"гитхаб":     "github",
	"github":     "github",
	"постгрес":   "postgres",
	"postgres":   "postgres",
	"постгресql": "postgres",
	"sql":        "sql",
	"докер":      "docker",
	"docker":     "docker",
	"кубернетес": "kubernetes",
	"kubernetes": "kubernetes",
	"k8s":        "kubernetes",
}

var (
	disallowedRe = regexp.MustCompile(`[^a-z0-9а-я+#\s]`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// Normalize maps a free-form skill string to its comparison token: lowercase,
// fold ё, strip everything outside Latin/Cyrillic letters, digits, '+', '#'
// and spaces, collapse whitespace, then resolve aliases. Idempotent. An empty
// result means "no skill"; two empty tokens are never the same skill.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "ё", "е")
	s = disallowedRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// BuildSet normalizes a list of display strings into a token set, dropping
// entries that normalize to nothing.
func BuildSet(skills []string) map[string]bool {
	out := make(map[string]bool, len(skills))
	for _, s := range skills {
		if token := Normalize(s); token != "" {
			out[token] = true
		}
	}
	return out
}

// MergeUnique concatenates primary then extra, deduplicating by normalized
// token while preserving the first-seen display string, truncated to limit
// entries (limit <= 0 means unlimited).
func MergeUnique(primary, extra []string, limit int) []string {
	out := make([]string, 0, len(primary)+len(extra))
	seen := make(map[string]bool)
	for _, s := range append(append([]string{}, primary...), extra...) {
		display := strings.TrimSpace(s)
		if display == "" {
			continue
		}
		token := Normalize(display)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, display)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
