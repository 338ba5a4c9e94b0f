// Package analysis implements the career-guidance operations: the interview
// loop, profile analysis, posting skill extraction, market-gap and
// inclusivity-aware enrichment. Every LLM answer passes through the output
// validation pipeline before it reaches a caller.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/headhunter"
	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/ratelimit"
	"github.com/vector-ai/vector-backend/internal/skills"
	"github.com/vector-ai/vector-backend/internal/snapshot"
	"github.com/vector-ai/vector-backend/internal/validation"
)

// Rate limits per seeker, matching the traffic each operation can absorb.
const (
	interviewLimit  = 25
	interviewWindow = time.Minute

	analyzeLimit  = 6
	analyzeWindow = 5 * time.Minute
)

// ErrEmptyMessage rejects interview turns with no user text.
var ErrEmptyMessage = errors.New("empty message")

// ErrBadAnalysis means the model output stayed invalid after repair and no
// profile analysis could be produced.
var ErrBadAnalysis = errors.New("analysis output failed validation")

// RateLimitedError tells the caller which operation is throttled and for how
// long a full window lasts.
type RateLimitedError struct {
	Scope  string
	Limit  int
	Window time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d per %s", e.Scope, e.Limit, e.Window)
}

// IsRateLimited reports whether err wraps a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}

// PostingAPI is the slice of the job-posting client the service uses.
type PostingAPI interface {
	SearchVacancies(ctx context.Context, query string, opts headhunter.SearchOptions) (*headhunter.SearchResult, error)
	GetVacancy(ctx context.Context, id string) (*headhunter.Vacancy, error)
	CountVacancies(ctx context.Context, query string, areaID int) (int, error)
}

// Dispatcher is the model gateway surface the service depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, messages []llm.Message) (string, error)
}

// Service wires the gateway, validators, canonical skill store, posting API,
// rate limiter and snapshot recorder into the operations the handlers call.
type Service struct {
	gateway  Dispatcher
	repairer *validation.Repairer
	limiter  *ratelimit.Limiter
	store    *skills.Store
	postings PostingAPI
	recorder snapshot.Recorder
	areaID   int
	log      *zap.Logger
}

// NewService builds the service. areaID pins posting searches to one region.
func NewService(
	gateway Dispatcher,
	repairer *validation.Repairer,
	limiter *ratelimit.Limiter,
	store *skills.Store,
	postings PostingAPI,
	recorder snapshot.Recorder,
	areaID int,
	log *zap.Logger,
) *Service {
	return &Service{
		gateway:  gateway,
		repairer: repairer,
		limiter:  limiter,
		store:    store,
		postings: postings,
		recorder: recorder,
		areaID:   areaID,
		log:      log,
	}
}

func (s *Service) allow(scope, seekerID string, limit int, window time.Duration) error {
	key := scope + ":" + seekerID
	if !s.limiter.Allow(key, limit, window) {
		return &RateLimitedError{Scope: scope, Limit: limit, Window: window}
	}
	return nil
}
