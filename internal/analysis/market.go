package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/headhunter"
	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/skills"
	"github.com/vector-ai/vector-backend/internal/validation"
)

const (
	topMarketSkills = 20
	gapListLimit    = 12
	gapSearchSize   = 20

	maxPostingText = 5000
)

const extractSchemaHint = `{"skills": ["навык1","навык2","навык3"]}`

const extractSystemPrompt = "Верни ТОЛЬКО JSON.\n" +
	"Выдели 8-18 ключевых навыков из вакансии.\n" +
	"Значения пиши по-русски, технологии можно латиницей.\n" +
	"Схема:\n" + extractSchemaHint

// ExtractSkills pulls 8-18 skills out of posting text. Extraction feeds
// best-effort enrichment, so output that stays malformed after one repair
// yields an empty list rather than an error.
func (s *Service) ExtractSkills(ctx context.Context, postingText string) []string {
	if len(postingText) > maxPostingText {
		postingText = postingText[:maxPostingText]
	}

	raw, err := s.gateway.Dispatch(ctx, []llm.Message{
		llm.System(extractSystemPrompt),
		llm.User(postingText),
	})
	if err != nil {
		s.log.Warn("skill extraction dispatch failed", zap.Error(err))
		return []string{}
	}

	contract := validation.JSONContract{
		RequiredKeys: []string{"skills"},
		SchemaHint:   extractSchemaHint,
	}
	payload, usedFallback := s.repairer.ValidJSON(ctx, raw, contract, nil)
	if usedFallback {
		return []string{}
	}

	rawSkills, _ := payload["skills"].([]any)
	extracted := make([]string, 0, len(rawSkills))
	for _, item := range rawSkills {
		if name, ok := item.(string); ok && strings.TrimSpace(name) != "" {
			extracted = append(extracted, strings.TrimSpace(name))
		}
	}
	return extracted
}

// AnalyzeVacancy fetches the posting, extracts skills with the model and
// creates the canonical set from tagged plus extracted skills. Returns the
// canonical set that won.
func (s *Service) AnalyzeVacancy(ctx context.Context, postingID string) ([]string, error) {
	vacancy, err := s.postings.GetVacancy(ctx, postingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load posting %s: %w", postingID, err)
	}

	payload, _ := json.Marshal(map[string]any{
		"title":       vacancy.Name,
		"description": vacancy.PlainDescription(),
		"key_skills":  vacancy.SkillNames(),
	})
	extracted := s.ExtractSkills(ctx, string(payload))

	hinted := append(append([]string{}, vacancy.SkillNames()...), extracted...)
	return s.store.EnsureOnce(ctx, postingID, hinted)
}

// MatchPercent computes the seeker's match against the posting's canonical
// set, creating the set from the posting's tagged skills on first contact.
func (s *Service) MatchPercent(ctx context.Context, postingID string, seekerTokens map[string]bool) (skills.MatchResult, error) {
	canonical, err := s.store.EnsureOnce(ctx, postingID, nil)
	if err != nil {
		return skills.MatchResult{}, err
	}
	return skills.Match(canonical, seekerTokens), nil
}

// MarketGap is the demand picture for one role next to a seeker's skills.
type MarketGap struct {
	Role      string   `json:"role"`
	TopMarket []string `json:"top_market"`
	Have      []string `json:"have"`
	Missing   []string `json:"missing"`
	Used      int      `json:"used"`
	Percent   int      `json:"percent"`
}

// MarketGap counts normalized key-skill frequencies across postings matching
// roleQuery and splits the top of the market into skills the seeker has and
// skills they miss. Percent is the share of the top-market list covered; an
// empty market yields zero.
func (s *Service) MarketGap(ctx context.Context, roleQuery string, seekerTokens map[string]bool) (*MarketGap, error) {
	result, err := s.postings.SearchVacancies(ctx, roleQuery, headhunter.SearchOptions{
		AreaID:  s.areaID,
		PerPage: gapSearchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("market search for %q failed: %w", roleQuery, err)
	}

	counter := make(map[string]int)
	used := 0
	for _, item := range result.Items {
		if item.ID == "" {
			continue
		}
		used++
		vacancy, err := s.postings.GetVacancy(ctx, item.ID)
		if err != nil {
			s.log.Debug("posting detail unavailable for gap analysis",
				zap.String("posting_id", item.ID), zap.Error(err))
			continue
		}
		for _, name := range vacancy.SkillNames() {
			if token := skills.Normalize(name); token != "" {
				counter[token]++
			}
		}
	}

	topMarket := topByCount(counter, topMarketSkills)

	have := make([]string, 0, gapListLimit)
	missing := make([]string, 0, gapListLimit)
	for _, token := range topMarket {
		if seekerTokens[token] {
			if len(have) < gapListLimit {
				have = append(have, token)
			}
		} else if len(missing) < gapListLimit {
			missing = append(missing, token)
		}
	}

	percent := 0
	if len(topMarket) > 0 {
		percent = int(float64(len(have))/float64(len(topMarket))*100 + 0.5)
	}

	return &MarketGap{
		Role:      roleQuery,
		TopMarket: topMarket,
		Have:      have,
		Missing:   missing,
		Used:      used,
		Percent:   percent,
	}, nil
}

// topByCount returns up to limit tokens ordered by descending count, ties
// broken alphabetically so results are stable.
func topByCount(counter map[string]int, limit int) []string {
	tokens := make([]string, 0, len(counter))
	for token := range counter {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counter[tokens[i]] != counter[tokens[j]] {
			return counter[tokens[i]] > counter[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return tokens
}

// RoleHeat is the demand bucket for one role.
type RoleHeat struct {
	Role  string `json:"role"`
	Found int    `json:"found"`
	Heat  string `json:"heat"`
}

var defaultAnalyticsRoles = []string{
	"Backend Developer",
	"Frontend Developer",
	"Медицинская сестра",
	"Инженер строитель",
	"Менеджер по продажам",
}

// MarketAnalytics buckets vacancy counts per role into heat levels. A role
// whose count cannot be fetched reads as cold rather than failing the batch.
func (s *Service) MarketAnalytics(ctx context.Context, roles []string) []RoleHeat {
	if len(roles) == 0 {
		roles = defaultAnalyticsRoles
	}

	results := make([]RoleHeat, 0, len(roles))
	for _, role := range roles {
		found, err := s.postings.CountVacancies(ctx, role, s.areaID)
		if err != nil {
			s.log.Warn("vacancy count unavailable", zap.String("role", role), zap.Error(err))
			found = 0
		}

		heat := "none"
		switch {
		case found >= 1000:
			heat = "high"
		case found >= 500:
			heat = "medium"
		case found > 0:
			heat = "low"
		}
		results = append(results, RoleHeat{Role: role, Found: found, Heat: heat})
	}
	return results
}

// RiskReport is the automation-risk forecast for a profession.
type RiskReport struct {
	Demand       string `json:"demand"`
	Competition  string `json:"competition"`
	Automation   string `json:"automation"`
	RiskScore    int    `json:"risk_score"`
	Summary      string `json:"summary"`
	UsedFallback bool   `json:"-"`
}

const riskSchemaHint = `{` +
	`"demand":"высокий|средний|низкий",` +
	`"competition":"растёт|стабильная|снижается",` +
	`"automation":"низкая|умеренная|высокая",` +
	`"risk_score":0-100,` +
	`"summary":"краткий аналитический вывод"` +
	`}`

func riskSystemPrompt() string {
	return "Ты аналитическая система рынка труда.\n" +
		"Верни ТОЛЬКО один валидный JSON.\n" +
		"Ключи JSON — как в схеме.\n" +
		"Значения — ТОЛЬКО по-русски (кириллица), без транслита и латиницы.\n" +
		"Схема:\n" + riskSchemaHint + "\n" +
		"Никакого текста до и после JSON."
}

func fallbackRiskReport(profession string) *RiskReport {
	return &RiskReport{
		Demand:      "средний",
		Competition: "стабильная",
		Automation:  "умеренная",
		RiskScore:   50,
		Summary: fmt.Sprintf(
			"Для профессии «%s» требуется дополнительный анализ. Данные модели временно недоступны.",
			profession),
		UsedFallback: true,
	}
}

// RiskForecast asks the model for a demand/competition/automation estimate
// with Russian-only values, repairing once, then falling back to the neutral
// deterministic report. RiskScore is clamped to 0..100.
func (s *Service) RiskForecast(ctx context.Context, profession string) (*RiskReport, error) {
	profession = strings.TrimSpace(profession)
	if profession == "" {
		return nil, fmt.Errorf("empty profession")
	}

	raw, err := s.gateway.Dispatch(ctx, []llm.Message{
		llm.System(riskSystemPrompt()),
		llm.User("Проанализируй профессию: " + profession),
	})
	if err != nil {
		return fallbackRiskReport(profession), nil
	}

	contract := validation.JSONContract{
		RequiredKeys: []string{"demand"},
		SchemaHint:   riskSchemaHint,
		CheckScript:  true,
	}
	payload, usedFallback := s.repairer.ValidJSON(ctx, raw, contract, nil)
	if usedFallback {
		return fallbackRiskReport(profession), nil
	}

	report := &RiskReport{
		Demand:      stringField(payload, "demand"),
		Competition: stringField(payload, "competition"),
		Automation:  stringField(payload, "automation"),
		Summary:     stringField(payload, "summary"),
		RiskScore:   50,
	}
	if score, ok := payload["risk_score"].(float64); ok {
		report.RiskScore = int(score)
	}
	if report.RiskScore < 0 {
		report.RiskScore = 0
	}
	if report.RiskScore > 100 {
		report.RiskScore = 100
	}
	return report, nil
}

func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return strings.TrimSpace(value)
}

const fallbackFitBullets = "• Совпадает направление и тип задач.\n" +
	"• Подходит по сильным навыкам из профиля.\n" +
	"• Есть понятные шаги роста по недостающим навыкам.\n" +
	"• Формат работы можно подстроить под студента."

const explainSystemPrompt = "Ты карьерный консультант.\n" +
	"Сделай 3–6 коротких буллетов: почему вакансия подходит студенту.\n" +
	"Учитывай personality_type, top_roles и навыки.\n" +
	"Можно писать названия технологий латиницей (React, TypeScript, Git и т.п.).\n" +
	"Пиши простыми словами.\n" +
	"Только буллеты."

// ExplainVacancyFit produces short bullets on why the posting suits the
// seeker. Provider failure or an empty answer degrade to fixed bullets.
func (s *Service) ExplainVacancyFit(ctx context.Context, profile Profile, analysis *ProfileAnalysis, vacancy *headhunter.Vacancy) string {
	payload, _ := json.Marshal(map[string]any{
		"student_profile":  profile,
		"student_analysis": analysis,
		"vacancy": map[string]any{
			"name":        vacancy.Name,
			"area":        vacancy.Area.Name,
			"employer":    vacancy.Employer.Name,
			"key_skills":  vacancy.SkillNames(),
			"snippet":     vacancy.Snippet,
			"description": truncateRunes(vacancy.PlainDescription(), 2500),
		},
	})

	explain, err := s.gateway.Dispatch(ctx, []llm.Message{
		llm.System(explainSystemPrompt),
		llm.User(string(payload)),
	})
	if err != nil || strings.TrimSpace(explain) == "" {
		return fallbackFitBullets
	}
	return strings.TrimSpace(explain)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
