// Package server exposes the analysis service as a JSON API. Sessions, HTML
// and the rest of the product surface live in a separate edge service; this
// API is what that edge talks to.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/analysis"
)

// Server carries the service and the request validator.
type Server struct {
	service    *analysis.Service
	validate   *validator.Validate
	log        *zap.Logger
	httpServer *http.Server
}

// New builds the server for the given port.
func New(service *analysis.Service, port int, log *zap.Logger) *Server {
	s := &Server{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /interview", s.handleInterview)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /skills/extract", s.handleExtractSkills)
	mux.HandleFunc("GET /match", s.handleMatch)
	mux.HandleFunc("POST /market/gap", s.handleMarketGap)
	mux.HandleFunc("POST /market/analytics", s.handleMarketAnalytics)
	mux.HandleFunc("POST /vacancies/enrich", s.handleEnrich)
	mux.HandleFunc("POST /resume/generate", s.handleResume)
	mux.HandleFunc("POST /risk-forecast", s.handleRiskForecast)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("response encoding failed", zap.Error(err))
	}
}

// decodeAndValidate parses the body into dst and runs struct validation.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
