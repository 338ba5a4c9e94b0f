package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/skills"
	"github.com/vector-ai/vector-backend/internal/snapshot"
	"github.com/vector-ai/vector-backend/internal/validation"
)

// Profile is the onboarding data a seeker filled in before the interview.
type Profile struct {
	FullName   string   `json:"full_name"`
	City       string   `json:"city"`
	College    string   `json:"college"`
	Speciality string   `json:"speciality"`
	StartYear  int      `json:"start_year"`
	JobIntent  string   `json:"job_intent"`
	Roles      []string `json:"roles"`
	Region     string   `json:"region"`
	Remote     bool     `json:"remote"`
}

// ProfileAnalysis is the validated result of a profile analysis.
type ProfileAnalysis struct {
	PersonalityType  string               `json:"personality_type"`
	PersonalityShort string               `json:"personality_short"`
	SoftSkills       []snapshot.SkillScore `json:"soft_skills"`
	HardSkills       []snapshot.SkillScore `json:"hard_skills"`
	TopRoles         []string             `json:"top_roles"`
	LearningPlan     []LearningStep       `json:"learning_plan"`
}

// LearningStep is one entry of the suggested learning plan.
type LearningStep struct {
	Skill    string `json:"skill"`
	Why      string `json:"why"`
	NextStep string `json:"next_step"`
}

const analyzeSchemaHint = `{` +
	`"personality_type":"(один из 16 типов)",` +
	`"personality_short":"коротко 1-2 предложения",` +
	`"soft_skills":[{"name":"...","score":0-100}],` +
	`"hard_skills":[{"name":"...","score":0-100}],` +
	`"top_roles":["роль1","роль2","роль3"],` +
	`"learning_plan":[{"skill":"...","why":"...","next_step":"..."}]` +
	`}`

func analyzeSystemPrompt() string {
	return "Ты анализатор профиля студента VECTOR AI.\n" +
		"Верни ТОЛЬКО один валидный JSON-объект, без текста до/после.\n" +
		"Ключи JSON — ТОЧНО как в схеме (ключи могут быть на латинице).\n" +
		"ЗНАЧЕНИЯ — ТОЛЬКО по-русски (кириллица), без транслита и латиницы.\n" +
		"Схема:\n" + analyzeSchemaHint + "\n" +
		"Оцени score реалистично. Не выдумывай дипломы/опыт."
}

// AnalyzeProfile turns the onboarding profile and interview transcript into a
// structured analysis. The model answer must carry personality_type and
// Russian-only values; one repair attempt is allowed, after which the
// operation fails with ErrBadAnalysis instead of inventing a result. On
// success a skill snapshot and a market-fit snapshot for the first suggested
// role are recorded best effort.
func (s *Service) AnalyzeProfile(ctx context.Context, seekerID string, profile Profile, history []llm.Message) (*ProfileAnalysis, error) {
	if err := s.allow("analyze", seekerID, analyzeLimit, analyzeWindow); err != nil {
		return nil, err
	}

	profileJSON, _ := json.Marshal(profile)
	transcript := make([]map[string]string, 0, len(history))
	for _, m := range history {
		transcript = append(transcript, map[string]string{"role": string(m.Role), "content": m.Content})
	}
	transcriptJSON, _ := json.Marshal(transcript)

	raw, err := s.gateway.Dispatch(ctx, []llm.Message{
		llm.System(analyzeSystemPrompt()),
		llm.User("Onboarding profile:\n" + string(profileJSON)),
		llm.User("Interview messages:\n" + string(transcriptJSON)),
	})
	if err != nil {
		return nil, fmt.Errorf("profile analysis failed: %w", err)
	}

	contract := validation.JSONContract{
		RequiredKeys: []string{"personality_type"},
		SchemaHint:   analyzeSchemaHint,
		CheckScript:  true,
	}
	payload, usedFallback := s.repairer.ValidJSON(ctx, raw, contract, nil)
	if usedFallback {
		return nil, ErrBadAnalysis
	}

	analysis, err := decodeAnalysis(payload)
	if err != nil {
		return nil, ErrBadAnalysis
	}

	s.recordAnalysisSnapshots(ctx, seekerID, analysis)

	return analysis, nil
}

func decodeAnalysis(payload map[string]any) (*ProfileAnalysis, error) {
	var analysis ProfileAnalysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &analysis,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, err
	}

	if strings.TrimSpace(analysis.PersonalityType) == "" {
		return nil, fmt.Errorf("missing personality type")
	}

	analysis.SoftSkills = cleanScores(analysis.SoftSkills, "soft")
	analysis.HardSkills = cleanScores(analysis.HardSkills, "hard")
	return &analysis, nil
}

// cleanScores drops unnamed skills and clamps scores into 0..100.
func cleanScores(scores []snapshot.SkillScore, kind string) []snapshot.SkillScore {
	cleaned := make([]snapshot.SkillScore, 0, len(scores))
	for _, sc := range scores {
		sc.Name = strings.TrimSpace(sc.Name)
		if sc.Name == "" {
			continue
		}
		if sc.Score < 0 {
			sc.Score = 0
		}
		if sc.Score > 100 {
			sc.Score = 100
		}
		sc.Kind = kind
		cleaned = append(cleaned, sc)
	}
	return cleaned
}

// recordAnalysisSnapshots appends history rows for the analysis. Failures are
// logged, never surfaced: snapshots are bookkeeping, not part of the result.
func (s *Service) recordAnalysisSnapshots(ctx context.Context, seekerID string, analysis *ProfileAnalysis) {
	if s.recorder == nil {
		return
	}

	allSkills := append(append([]snapshot.SkillScore{}, analysis.SoftSkills...), analysis.HardSkills...)
	_, err := s.recorder.RecordSkills(ctx, snapshot.SkillSnapshot{
		SeekerID:        seekerID,
		PersonalityType: analysis.PersonalityType,
		Skills:          allSkills,
		Note:            "после анализа",
	})
	if err != nil {
		s.log.Warn("skill snapshot not recorded", zap.String("seeker_id", seekerID), zap.Error(err))
	}

	if len(analysis.TopRoles) == 0 {
		return
	}
	role := analysis.TopRoles[0]
	tokens := make(map[string]bool)
	for _, sc := range analysis.HardSkills {
		if t := skills.Normalize(sc.Name); t != "" {
			tokens[t] = true
		}
	}
	gap, err := s.MarketGap(ctx, role, tokens)
	if err != nil {
		s.log.Warn("market-fit snapshot skipped", zap.String("role", role), zap.Error(err))
		return
	}
	_, err = s.recorder.RecordMarketFit(ctx, snapshot.MarketFitSnapshot{
		SeekerID:  seekerID,
		Role:      role,
		Percent:   gap.Percent,
		Have:      gap.Have,
		Missing:   gap.Missing,
		TopMarket: gap.TopMarket,
		Note:      "после анализа",
	})
	if err != nil {
		s.log.Warn("market-fit snapshot not recorded", zap.String("seeker_id", seekerID), zap.Error(err))
	}
}
