package validation

import (
	"regexp"
	"strings"
)

var (
	latinRe = regexp.MustCompile(`[A-Za-z]`)
	cjkRe   = regexp.MustCompile(`[\x{4e00}-\x{9fff}\x{3040}-\x{30ff}\x{ac00}-\x{d7af}]`)
	wordRe  = regexp.MustCompile(`\S+`)
)

// exemptTokens may appear in Latin script inside otherwise Russian values:
// technology and role acronyms plus the 16 personality-type codes.
var exemptTokens = map[string]bool{
	"frontend": true, "backend": true, "fullstack": true, "devops": true,
	"qa": true, "ui": true, "ux": true,
	"javascript": true, "typescript": true, "react": true, "vue": true,
	"angular": true, "next": true, "nuxt": true,
	"node": true, "nodejs": true, "express": true, "nestjs": true,
	"django": true, "flask": true, "fastapi": true,
	"html": true, "css": true, "sass": true, "scss": true, "js": true,
	"git": true, "github": true, "gitlab": true,
	"api": true, "rest": true, "graphql": true, "sql": true,
	"postgres": true, "mysql": true, "mongodb": true,
	"docker": true, "kubernetes": true, "k8s": true,
	"figma": true, "jira": true, "confluence": true,
	"aws": true, "gcp": true, "azure": true,
	"unity": true, "c#": true, "c++": true, "python": true, "java": true,
	"kotlin": true, "swift": true, "go": true, "rust": true,

	"intj": true, "intp": true, "entj": true, "entp": true,
	"infj": true, "infp": true, "enfj": true, "enfp": true,
	"istj": true, "isfj": true, "estj": true, "esfj": true,
	"istp": true, "isfp": true, "estp": true, "esfp": true,
}

// HasLatin reports whether the text contains any Latin letter.
func HasLatin(text string) bool { return latinRe.MatchString(text) }

// HasCJK reports whether the text contains CJK, kana or hangul characters.
func HasCJK(text string) bool { return cjkRe.MatchString(text) }

// RussianOnly reports whether the text is free of Latin and CJK script.
// It does not consult the exemption set; use ValueAllowed for payload values.
func RussianOnly(text string) bool {
	t := strings.TrimSpace(text)
	return !HasLatin(t) && !HasCJK(t)
}

// ValueAllowed reports whether a single string value satisfies the script
// constraint. CJK is never allowed; Latin is allowed only for words in the
// exemption set.
func ValueAllowed(value string) bool {
	if HasCJK(value) {
		return false
	}
	for _, word := range wordRe.FindAllString(value, -1) {
		if !HasLatin(word) {
			continue
		}
		if !exemptTokens[strings.ToLower(strings.Trim(word, ".,;:!?()«»\"'"))] {
			return false
		}
	}
	return true
}

// CheckScript recurses through all string leaves of a payload and returns a
// *ScriptViolationError for the first disallowed value. Non-string leaves
// (numbers, booleans, nulls) always pass.
func CheckScript(payload any) error {
	switch v := payload.(type) {
	case map[string]any:
		for _, item := range v {
			if err := CheckScript(item); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := CheckScript(item); err != nil {
				return err
			}
		}
	case string:
		if !ValueAllowed(v) {
			return &ScriptViolationError{Value: v}
		}
	}
	return nil
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// maxQuestionWords bounds interview questions so the model keeps them short.
const maxQuestionWords = 12

// QuestionOK is the free-text contract for interview questions: one Russian
// interrogative sentence of at most twelve words.
func QuestionOK(text string) bool {
	t := strings.TrimSpace(text)
	if !strings.HasSuffix(t, "?") {
		return false
	}
	if !RussianOnly(t) {
		return false
	}
	return CountWords(t) <= maxQuestionWords
}
