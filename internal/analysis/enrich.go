package analysis

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vector-ai/vector-backend/internal/headhunter"
	"github.com/vector-ai/vector-backend/internal/inclusive"
	"github.com/vector-ai/vector-backend/internal/skills"
)

const (
	enrichWorkers    = 12
	enrichBatchMin   = 50
	enrichBatchMax   = 200
	enrichSearchSize = 20
	fallbackListSize = 20
)

// defaultSearchRoles is searched when the caller gives no query.
var defaultSearchRoles = []string{
	"Backend Developer", "Frontend Developer", "QA", "DevOps",
	"Маркетолог", "Бухгалтер", "HR", "Менеджер по продажам",
	"Инженер", "Учитель", "Водитель", "Медицинская сестра",
}

// EnrichFilters narrows an enriched listing to postings carrying the required
// inclusivity categories. MatchLogic is "and" (default) or "or".
type EnrichFilters struct {
	RequiredCategories map[string]bool `json:"required_categories"`
	MatchLogic         string          `json:"match_logic"`
}

// EnrichedVacancy is one posting with inclusivity classification and the
// seeker's canonical match percent attached.
type EnrichedVacancy struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Employer      string               `json:"employer"`
	URL           string               `json:"url"`
	Percent       int                  `json:"percent"`
	Categories    inclusive.Categories `json:"categories"`
	Tags          []string             `json:"tags"`
	RiskFlags     []string             `json:"risk_flags"`
	CategoryCount int                  `json:"category_true_count"`
}

// EnrichResult is the outcome of one enrichment batch.
type EnrichResult struct {
	SearchedRoles []string          `json:"searched_roles"`
	Items         []EnrichedVacancy `json:"items"`
}

var expectedCategories = map[string]bool{
	"visually_impaired":       true,
	"hearing_impaired":        true,
	"mobility_access":         true,
	"neurodiversity_friendly": true,
	"junior_friendly":         true,
	"remote_possible":         true,
	"flexible_schedule":       true,
}

func categoryOn(cats inclusive.Categories, name string) bool {
	switch name {
	case "visually_impaired":
		return cats.VisuallyImpaired
	case "hearing_impaired":
		return cats.HearingImpaired
	case "mobility_access":
		return cats.MobilityAccess
	case "neurodiversity_friendly":
		return cats.NeurodiversityFriendly
	case "junior_friendly":
		return cats.JuniorFriendly
	case "remote_possible":
		return cats.RemotePossible
	case "flexible_schedule":
		return cats.FlexibleSchedule
	}
	return false
}

// passesFilter applies the AND/OR category filter; no requested categories
// means everything passes.
func passesFilter(cats inclusive.Categories, filters EnrichFilters) bool {
	requested := make([]string, 0, len(filters.RequiredCategories))
	for name, wanted := range filters.RequiredCategories {
		if wanted && expectedCategories[name] {
			requested = append(requested, name)
		}
	}
	if len(requested) == 0 {
		return true
	}

	logic := strings.ToLower(filters.MatchLogic)
	if logic != "or" {
		logic = "and"
	}

	matched := 0
	for _, name := range requested {
		if categoryOn(cats, name) {
			matched++
		}
	}
	if logic == "and" {
		return matched == len(requested)
	}
	return matched > 0
}

// EnrichVacancies searches postings across the given role queries, fans the
// batch out over a bounded worker pool, and attaches inclusivity categories
// and the seeker's canonical match percent to each posting. The batch is
// capped to bound outbound calls; a filter that removes everything degrades
// to a plain unfiltered list so the seeker never sees an empty page because
// of strict preferences.
func (s *Service) EnrichVacancies(ctx context.Context, seekerID string, queries []string, seekerTokens map[string]bool, filters EnrichFilters) (*EnrichResult, error) {
	searchRoles := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) != "" {
			searchRoles = append(searchRoles, strings.TrimSpace(q))
		}
	}
	if len(searchRoles) == 0 {
		searchRoles = defaultSearchRoles
	}

	// Collect summaries across roles, first sighting of an id wins.
	collected := make([]*headhunter.Vacancy, 0, len(searchRoles)*enrichSearchSize)
	seen := make(map[string]bool)
	for _, role := range searchRoles {
		result, err := s.postings.SearchVacancies(ctx, role, headhunter.SearchOptions{
			AreaID:  s.areaID,
			PerPage: enrichSearchSize,
		})
		if err != nil {
			s.log.Warn("posting search failed for role",
				zap.String("role", role), zap.Error(err))
			continue
		}
		for _, item := range result.Items {
			if item.ID == "" || seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			collected = append(collected, item)
		}
	}

	if len(collected) == 0 {
		return &EnrichResult{SearchedRoles: searchRoles, Items: []EnrichedVacancy{}}, nil
	}

	batch := collected
	limit := enrichBatchMin
	if len(collected) > enrichBatchMin {
		limit = len(collected)
	}
	if limit > enrichBatchMax {
		limit = enrichBatchMax
	}
	if len(batch) > limit {
		batch = batch[:limit]
	}

	var mu sync.Mutex
	enriched := make([]EnrichedVacancy, 0, len(batch))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := enrichWorkers
	if len(batch) < workers {
		workers = len(batch)
	}
	group.SetLimit(workers)

	for _, summary := range batch {
		group.Go(func() error {
			item, ok := s.enrichOne(groupCtx, summary, seekerTokens, filters)
			if ok {
				mu.Lock()
				enriched = append(enriched, item)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Filter removed everything: show a plain list instead of nothing.
	if len(enriched) == 0 {
		plain := collected
		if len(plain) > fallbackListSize {
			plain = plain[:fallbackListSize]
		}
		for _, v := range plain {
			enriched = append(enriched, EnrichedVacancy{
				ID:       v.ID,
				Name:     v.Name,
				Employer: v.Employer.Name,
				URL:      v.AlternateURL,
			})
		}
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		if enriched[i].CategoryCount != enriched[j].CategoryCount {
			return enriched[i].CategoryCount > enriched[j].CategoryCount
		}
		return enriched[i].Percent > enriched[j].Percent
	})

	return &EnrichResult{SearchedRoles: searchRoles, Items: enriched}, nil
}

// enrichOne processes a single posting: full fetch with summary fallback,
// heuristics, canonical match percent, then the category filter. Returns
// ok=false when the filter rejects the posting.
func (s *Service) enrichOne(ctx context.Context, summary *headhunter.Vacancy, seekerTokens map[string]bool, filters EnrichFilters) (EnrichedVacancy, bool) {
	vacancy, err := s.postings.GetVacancy(ctx, summary.ID)
	if err != nil {
		s.log.Debug("full posting unavailable, using summary",
			zap.String("posting_id", summary.ID), zap.Error(err))
		vacancy = summary
	}

	text := strings.Join([]string{
		vacancy.Name,
		strings.Join(summary.SkillNames(), " "),
		summary.Snippet.Requirement,
		summary.Snippet.Responsibility,
		vacancy.Employer.Name,
	}, " ")
	classified := inclusive.Classify(text)

	percent := 0
	canonical, err := s.store.EnsureOnce(ctx, summary.ID, vacancy.SkillNames())
	if err != nil {
		s.log.Warn("canonical set unavailable during enrichment",
			zap.String("posting_id", summary.ID), zap.Error(err))
	} else {
		percent = skills.Match(canonical, seekerTokens).Percent
	}

	if !passesFilter(classified.Categories, filters) {
		return EnrichedVacancy{}, false
	}

	url := vacancy.AlternateURL
	if url == "" {
		url = summary.AlternateURL
	}

	return EnrichedVacancy{
		ID:            summary.ID,
		Name:          vacancy.Name,
		Employer:      vacancy.Employer.Name,
		URL:           url,
		Percent:       percent,
		Categories:    classified.Categories,
		Tags:          classified.Tags,
		RiskFlags:     classified.RiskFlags,
		CategoryCount: classified.Categories.TrueCount(),
	}, true
}
