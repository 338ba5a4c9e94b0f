package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/snapshot"
	"github.com/vector-ai/vector-backend/internal/validation"
)

const maxResumeProjects = 3

// ResumeProfile is the seeker data the resume is generated from.
type ResumeProfile struct {
	FullName         string                `json:"full_name"`
	City             string                `json:"city"`
	College          string                `json:"college"`
	Speciality       string                `json:"speciality"`
	Roles            []string              `json:"roles"`
	Remote           bool                  `json:"remote"`
	PersonalityType  string                `json:"personality_type"`
	PersonalityShort string                `json:"personality_short"`
	HardSkills       []snapshot.SkillScore `json:"hard_skills"`
	SoftSkills       []snapshot.SkillScore `json:"soft_skills"`
}

// ResumeProject is one project entry on the generated resume.
type ResumeProject struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Desc string `json:"desc"`
}

// Resume is the generated resume draft.
type Resume struct {
	Title        string          `json:"resume_title"`
	Summary      string          `json:"resume_summary"`
	Projects     []ResumeProject `json:"projects"`
	GithubURL    string          `json:"github_url"`
	PortfolioURL string          `json:"portfolio_url"`
	LinkedinURL  string          `json:"linkedin_url"`
	UsedFallback bool            `json:"-"`
}

const resumeSchemaHint = `{` +
	`"resume_title":"желаемая позиция",` +
	`"resume_summary":"2-4 предложения о себе (без выдуманного опыта)",` +
	`"projects":[{"name":"...","url":"","desc":"что сделал и стек"}],` +
	`"github_url":"",` +
	`"portfolio_url":"",` +
	`"linkedin_url":""` +
	`}`

const fallbackResumeSummary = "Я студент и развиваюсь в выбранном направлении. " +
	"Люблю учиться, быстро разбираюсь в новых задачах и хочу получить практический опыт в реальных проектах."

func resumeSystemPrompt() string {
	return "Ты помощник по резюме для студента.\n" +
		"Верни ТОЛЬКО один валидный JSON без текста до/после.\n" +
		"Не выдумывай опыт/компании/дипломы. Если данных нет — пиши аккуратно 'учусь', 'делаю проекты'.\n" +
		"Пиши по-русски (кириллица). Технологии можно латиницей (Python, React, Git).\n" +
		"Схема:\n" + resumeSchemaHint
}

// fallbackResume is the deterministic draft used when the model output stays
// invalid after repair. The title comes from the seeker's own role wishes.
func fallbackResume(profile ResumeProfile) *Resume {
	title := "Junior специалист"
	if len(profile.Roles) > 0 && strings.TrimSpace(profile.Roles[0]) != "" {
		title = strings.TrimSpace(profile.Roles[0])
	}
	return &Resume{
		Title:        title,
		Summary:      fallbackResumeSummary,
		Projects:     []ResumeProject{},
		UsedFallback: true,
	}
}

// GenerateResume drafts a resume from the analyzed profile. Uses the same
// rate limit as analysis (6 per 5 minutes) under its own key.
func (s *Service) GenerateResume(ctx context.Context, seekerID string, profile ResumeProfile) (*Resume, error) {
	if err := s.allow("resume", seekerID, analyzeLimit, analyzeWindow); err != nil {
		return nil, err
	}

	profileJSON, _ := json.Marshal(profile)
	raw, err := s.gateway.Dispatch(ctx, []llm.Message{
		llm.System(resumeSystemPrompt()),
		llm.User(string(profileJSON)),
	})
	if err != nil {
		// Provider failure still yields a usable draft.
		return fallbackResume(profile), nil
	}

	contract := validation.JSONContract{
		RequiredKeys: []string{"resume_title"},
		SchemaHint:   resumeSchemaHint,
	}
	payload, usedFallback := s.repairer.ValidJSON(ctx, raw, contract, nil)
	if usedFallback {
		return fallbackResume(profile), nil
	}

	var resume Resume
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &resume,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resume decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return fallbackResume(profile), nil
	}

	resume.Title = strings.TrimSpace(resume.Title)
	resume.Summary = strings.TrimSpace(resume.Summary)
	if resume.Title == "" {
		return fallbackResume(profile), nil
	}
	if len(resume.Projects) > maxResumeProjects {
		resume.Projects = resume.Projects[:maxResumeProjects]
	}
	if resume.Projects == nil {
		resume.Projects = []ResumeProject{}
	}

	return &resume, nil
}
