package server

import (
	"net/http"

	"github.com/vector-ai/vector-backend/internal/analysis"
	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/skills"
)

// WireMessage is one turn of interview history on the wire.
type WireMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

func toMessages(wire []WireMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	return messages
}

// InterviewRequest is the body for POST /interview.
type InterviewRequest struct {
	SeekerID string        `json:"seeker_id" validate:"required"`
	History  []WireMessage `json:"history" validate:"dive"`
	Message  string        `json:"message" validate:"required"`
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	var req InterviewRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	reply, err := s.service.InterviewTurn(r.Context(), req.SeekerID, toMessages(req.History), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"answer":  reply.Answer,
		"q_count": reply.QuestionCount,
		"done":    reply.Done,
	})
}

// AnalyzeRequest is the body for POST /analyze.
type AnalyzeRequest struct {
	SeekerID string           `json:"seeker_id" validate:"required"`
	Profile  analysis.Profile `json:"profile"`
	History  []WireMessage    `json:"history" validate:"dive"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	result, err := s.service.AnalyzeProfile(r.Context(), req.SeekerID, req.Profile, toMessages(req.History))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "analysis": result})
}

// ExtractRequest is the body for POST /skills/extract.
type ExtractRequest struct {
	PostingID   string `json:"posting_id"`
	PostingText string `json:"posting_text"`
}

func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	// With a posting id the canonical set is created as a side effect;
	// otherwise this is a pure text extraction.
	if req.PostingID != "" {
		canonical, err := s.service.AnalyzeVacancy(r.Context(), req.PostingID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "skills": canonical})
		return
	}
	if req.PostingText == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	extracted := s.service.ExtractSkills(r.Context(), req.PostingText)
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "skills": extracted})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	postingID := r.URL.Query().Get("posting_id")
	if postingID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	seekerSkills := r.URL.Query()["skill"]

	match, err := s.service.MatchPercent(r.Context(), postingID, skills.BuildSet(seekerSkills))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "match": match})
}

// MarketGapRequest is the body for POST /market/gap.
type MarketGapRequest struct {
	Role   string   `json:"role" validate:"required"`
	Skills []string `json:"skills"`
}

func (s *Server) handleMarketGap(w http.ResponseWriter, r *http.Request) {
	var req MarketGapRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	gap, err := s.service.MarketGap(r.Context(), req.Role, skills.BuildSet(req.Skills))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "gap": gap})
}

// MarketAnalyticsRequest is the body for POST /market/analytics.
type MarketAnalyticsRequest struct {
	Roles []string `json:"roles"`
}

func (s *Server) handleMarketAnalytics(w http.ResponseWriter, r *http.Request) {
	var req MarketAnalyticsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}
	results := s.service.MarketAnalytics(r.Context(), req.Roles)
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": results})
}

// EnrichRequest is the body for POST /vacancies/enrich.
type EnrichRequest struct {
	SeekerID string                 `json:"seeker_id" validate:"required"`
	Queries  []string               `json:"queries"`
	Skills   []string               `json:"skills"`
	Filters  analysis.EnrichFilters `json:"filters"`
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	result, err := s.service.EnrichVacancies(r.Context(), req.SeekerID, req.Queries,
		skills.BuildSet(req.Skills), req.Filters)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"searched_roles": result.SearchedRoles,
		"items":          result.Items,
	})
}

// ResumeRequest is the body for POST /resume/generate.
type ResumeRequest struct {
	SeekerID string                 `json:"seeker_id" validate:"required"`
	Profile  analysis.ResumeProfile `json:"profile"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	resume, err := s.service.GenerateResume(r.Context(), req.SeekerID, req.Profile)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "resume": resume})
}

// RiskForecastRequest is the body for POST /risk-forecast.
type RiskForecastRequest struct {
	Profession string `json:"profession" validate:"required"`
}

func (s *Server) handleRiskForecast(w http.ResponseWriter, r *http.Request) {
	var req RiskForecastRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request"})
		return
	}

	report, err := s.service.RiskForecast(r.Context(), req.Profession)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "forecast": report})
}
