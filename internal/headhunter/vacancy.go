package headhunter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Vacancy is the typed shape of a posting as the hh.ru API returns it, both
// from search summaries and from the detail endpoint. Fields missing in a
// summary (Description, KeySkills) stay zero.
type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary struct {
		From     int    `json:"from,omitempty"`
		To       int    `json:"to,omitempty"`
		Currency string `json:"currency,omitempty"`
	} `json:"salary,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID           string `json:"id,omitempty"`
		Name         string `json:"name,omitempty"`
		AlternateURL string `json:"alternate_url,omitempty"`
	} `json:"employer,omitempty"`
	Description string `json:"description,omitempty"`
	KeySkills   []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Snippet struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Archived     bool   `json:"archived,omitempty"`
}

var plainSpaceRe = regexp.MustCompile(`\s+`)

// PlainDescription returns the posting description with HTML markup removed
// and whitespace collapsed. A description that fails to parse is returned
// as-is rather than dropped.
func (v *Vacancy) PlainDescription() string {
	desc := strings.TrimSpace(v.Description)
	if desc == "" {
		return ""
	}
	// Pad tags so adjacent blocks don't glue their words together once the
	// markup is gone.
	padded := strings.ReplaceAll(desc, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(padded))
	if err != nil {
		return plainSpaceRe.ReplaceAllString(desc, " ")
	}
	return strings.TrimSpace(plainSpaceRe.ReplaceAllString(doc.Text(), " "))
}

// SkillNames returns the tagged skill names in API order.
func (v *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(v.KeySkills))
	for _, skill := range v.KeySkills {
		if skill.Name != "" {
			names = append(names, skill.Name)
		}
	}
	return names
}

// SummaryText joins the pieces of a posting that carry skill signal: name,
// snippet requirement and responsibility, and the plain description when
// present. Used as LLM extraction input and by the inclusivity heuristics.
func (v *Vacancy) SummaryText() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{v.Name, v.Snippet.Requirement, v.Snippet.Responsibility, v.PlainDescription()} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ". ")
}
