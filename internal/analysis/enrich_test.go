package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vector-ai/vector-backend/internal/headhunter"
)

func enrichPostings() *fakePostings {
	remote := summaryVacancy("301", "Junior разработчик (удалённо)", "Ромашка")
	remote.AlternateURL = "https://hh.example/vacancy/301"

	office := summaryVacancy("302", "Бухгалтер в офис", "Василёк")
	office.AlternateURL = "https://hh.example/vacancy/302"

	return &fakePostings{
		searches: map[string]*headhunter.SearchResult{
			"разработчик": {Items: []*headhunter.Vacancy{remote, office}, Found: 2},
		},
		vacancies: map[string]*headhunter.Vacancy{
			"301": detailVacancy("301", "Junior разработчик (удалённо)", "Python", "Git"),
			"302": detailVacancy("302", "Бухгалтер в офис", "1C"),
		},
	}
}

func TestEnrichVacancies(t *testing.T) {
	fx := newFixture(t, &scriptedGateway{}, enrichPostings())

	result, err := fx.service.EnrichVacancies(context.Background(), "alice",
		[]string{"разработчик"},
		map[string]bool{"python": true},
		EnrichFilters{})
	require.NoError(t, err)

	assert.Equal(t, []string{"разработчик"}, result.SearchedRoles)
	require.Len(t, result.Items, 2)

	// The remote junior posting carries two categories and a 50% match, so
	// it sorts first.
	first := result.Items[0]
	assert.Equal(t, "301", first.ID)
	assert.True(t, first.Categories.RemotePossible)
	assert.True(t, first.Categories.JuniorFriendly)
	assert.Equal(t, 2, first.CategoryCount)
	assert.Equal(t, 50, first.Percent)
	assert.Equal(t, "https://hh.example/vacancy/301", first.URL)

	assert.Equal(t, "302", result.Items[1].ID)
	assert.Equal(t, 0, result.Items[1].Percent)
}

func TestEnrichVacanciesCategoryFilter(t *testing.T) {
	fx := newFixture(t, &scriptedGateway{}, enrichPostings())

	result, err := fx.service.EnrichVacancies(context.Background(), "alice",
		[]string{"разработчик"}, nil,
		EnrichFilters{
			RequiredCategories: map[string]bool{"remote_possible": true, "junior_friendly": true},
			MatchLogic:         "and",
		})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "301", result.Items[0].ID)
}

func TestEnrichVacanciesFilterEmptiesBatchFallsBack(t *testing.T) {
	fx := newFixture(t, &scriptedGateway{}, enrichPostings())

	result, err := fx.service.EnrichVacancies(context.Background(), "alice",
		[]string{"разработчик"}, nil,
		EnrichFilters{
			RequiredCategories: map[string]bool{"hearing_impaired": true},
		})
	require.NoError(t, err)

	assert.Len(t, result.Items, 2, "strict filter degrades to the plain list")
	for _, item := range result.Items {
		assert.Zero(t, item.Percent)
		assert.Zero(t, item.CategoryCount)
	}
}

func TestEnrichVacanciesUnknownCategoryIgnored(t *testing.T) {
	fx := newFixture(t, &scriptedGateway{}, enrichPostings())

	result, err := fx.service.EnrichVacancies(context.Background(), "alice",
		[]string{"разработчик"}, nil,
		EnrichFilters{RequiredCategories: map[string]bool{"made_up_category": true}})
	require.NoError(t, err)

	assert.Len(t, result.Items, 2, "unknown category names do not filter anything")
	assert.Positive(t, result.Items[0].CategoryCount)
}

func TestEnrichVacanciesDetailFailureUsesSummary(t *testing.T) {
	postings := enrichPostings()
	postings.vacancies = nil // every detail fetch 404s

	fx := newFixture(t, &scriptedGateway{}, postings)

	result, err := fx.service.EnrichVacancies(context.Background(), "alice",
		[]string{"разработчик"}, nil, EnrichFilters{})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	names := []string{result.Items[0].Name, result.Items[1].Name}
	assert.Contains(t, names, "Junior разработчик (удалённо)")
}

func TestEnrichVacanciesNoQueriesUsesDefaultRoles(t *testing.T) {
	fx := newFixture(t, &scriptedGateway{}, &fakePostings{})

	result, err := fx.service.EnrichVacancies(context.Background(), "alice", nil, nil, EnrichFilters{})
	require.NoError(t, err)

	assert.Equal(t, defaultSearchRoles, result.SearchedRoles)
	assert.Empty(t, result.Items)
}
