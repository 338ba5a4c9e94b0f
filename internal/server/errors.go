package server

import (
	"errors"
	"net/http"

	"github.com/vector-ai/vector-backend/internal/analysis"
	"github.com/vector-ai/vector-backend/internal/headhunter"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// httpStatus maps service errors onto wire statuses: throttling is 429, a
// broken upstream is 502, caller mistakes are 400.
func httpStatus(err error) int {
	switch {
	case analysis.IsRateLimited(err):
		return http.StatusTooManyRequests
	case headhunter.IsUpstream(err):
		return http.StatusBadGateway
	case errors.Is(err, analysis.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrBadAnalysis):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the stable machine-readable error token.
func errorCode(err error) string {
	switch {
	case analysis.IsRateLimited(err):
		return "too_many_requests"
	case headhunter.IsUpstream(err):
		return "upstream_unavailable"
	case errors.Is(err, analysis.ErrEmptyMessage):
		return "empty"
	case errors.Is(err, analysis.ErrBadAnalysis):
		return "bad_analysis"
	default:
		return "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, httpStatus(err), errorResponse{OK: false, Error: errorCode(err)})
}
