package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/headhunter"
	"github.com/vector-ai/vector-backend/internal/llm"
	"github.com/vector-ai/vector-backend/internal/ratelimit"
	"github.com/vector-ai/vector-backend/internal/skills"
	"github.com/vector-ai/vector-backend/internal/snapshot"
	"github.com/vector-ai/vector-backend/internal/validation"
)

// scriptedGateway returns queued responses in order and records every call.
type scriptedGateway struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llm.Message
}

func (g *scriptedGateway) Dispatch(_ context.Context, messages []llm.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, messages)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", errors.New("scripted gateway exhausted")
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next, nil
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// fakePostings serves canned search results and vacancy details.
type fakePostings struct {
	searches  map[string]*headhunter.SearchResult
	vacancies map[string]*headhunter.Vacancy
	counts    map[string]int
	searchErr error
	detailErr error
}

func (f *fakePostings) SearchVacancies(_ context.Context, query string, _ headhunter.SearchOptions) (*headhunter.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if result, ok := f.searches[query]; ok {
		return result, nil
	}
	return &headhunter.SearchResult{Items: []*headhunter.Vacancy{}}, nil
}

func (f *fakePostings) GetVacancy(_ context.Context, id string) (*headhunter.Vacancy, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if vacancy, ok := f.vacancies[id]; ok {
		return vacancy, nil
	}
	return nil, &headhunter.UpstreamError{Endpoint: "/vacancies/" + id, Status: 404}
}

func (f *fakePostings) CountVacancies(_ context.Context, query string, _ int) (int, error) {
	if f.searchErr != nil {
		return 0, f.searchErr
	}
	return f.counts[query], nil
}

func summaryVacancy(id, name, employer string) *headhunter.Vacancy {
	v := &headhunter.Vacancy{ID: id, Name: name}
	v.Employer.Name = employer
	return v
}

func detailVacancy(id, name string, skillNames ...string) *headhunter.Vacancy {
	v := &headhunter.Vacancy{ID: id, Name: name}
	for _, s := range skillNames {
		v.KeySkills = append(v.KeySkills, struct {
			Name string `json:"name,omitempty"`
		}{Name: s})
	}
	return v
}

type serviceFixture struct {
	service  *Service
	gateway  *scriptedGateway
	postings *fakePostings
	recorder *snapshot.MemoryRecorder
	repo     *skills.MemoryRepository
}

func newFixture(t *testing.T, gateway *scriptedGateway, postings *fakePostings) *serviceFixture {
	t.Helper()

	log := zap.NewNop()
	repo := skills.NewMemoryRepository()
	var fetchTags skills.TagsFetcher
	if postings != nil {
		fetchTags = func(ctx context.Context, postingID string) ([]string, error) {
			vacancy, err := postings.GetVacancy(ctx, postingID)
			if err != nil {
				return nil, err
			}
			return vacancy.SkillNames(), nil
		}
	}
	store := skills.NewStore(repo, fetchTags, log)
	recorder := snapshot.NewMemoryRecorder()

	service := NewService(
		gateway,
		validation.NewRepairer(gateway, log),
		ratelimit.NewLimiter(),
		store,
		postings,
		recorder,
		40,
		log,
	)

	return &serviceFixture{
		service:  service,
		gateway:  gateway,
		postings: postings,
		recorder: recorder,
		repo:     repo,
	}
}
