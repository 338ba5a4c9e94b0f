package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodResumeJSON = `{
	"resume_title": "Junior аналитик данных",
	"resume_summary": "Студент, учусь работать с данными и делаю учебные проекты.",
	"projects": [
		{"name": "Дашборд успеваемости", "url": "", "desc": "Python, Pandas"},
		{"name": "Бот расписания", "url": "", "desc": "Python, SQLite"},
		{"name": "Сайт колледжа", "url": "", "desc": "HTML, CSS"},
		{"name": "Лишний проект", "url": "", "desc": "обрезается"}
	],
	"github_url": "https://github.com/alia",
	"portfolio_url": "",
	"linkedin_url": ""
}`

func TestGenerateResume(t *testing.T) {
	gateway := &scriptedGateway{responses: []string{goodResumeJSON}}
	fx := newFixture(t, gateway, nil)

	resume, err := fx.service.GenerateResume(context.Background(), "alice", ResumeProfile{
		FullName: "Алия", Roles: []string{"аналитик данных"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Junior аналитик данных", resume.Title)
	assert.Len(t, resume.Projects, maxResumeProjects, "projects are capped")
	assert.Equal(t, "https://github.com/alia", resume.GithubURL)
	assert.False(t, resume.UsedFallback)
}

func TestGenerateResumeProviderFailure(t *testing.T) {
	gateway := &scriptedGateway{err: errors.New("all providers down")}
	fx := newFixture(t, gateway, nil)

	resume, err := fx.service.GenerateResume(context.Background(), "alice", ResumeProfile{
		Roles: []string{"тестировщик"},
	})
	require.NoError(t, err, "provider failure still returns a draft")

	assert.True(t, resume.UsedFallback)
	assert.Equal(t, "тестировщик", resume.Title, "fallback title comes from the seeker's roles")
	assert.NotEmpty(t, resume.Summary)
	assert.Empty(t, resume.Projects)
}

func TestGenerateResumeFallbackWithoutRoles(t *testing.T) {
	gateway := &scriptedGateway{responses: []string{
		"не json",
		"опять не json",
	}}
	fx := newFixture(t, gateway, nil)

	resume, err := fx.service.GenerateResume(context.Background(), "alice", ResumeProfile{})
	require.NoError(t, err)

	assert.True(t, resume.UsedFallback)
	assert.Equal(t, "Junior специалист", resume.Title)
	assert.Equal(t, 2, gateway.callCount(), "one generation call and one repair call")
}

func TestGenerateResumeRateLimited(t *testing.T) {
	responses := make([]string, 0, analyzeLimit)
	for i := 0; i < analyzeLimit; i++ {
		responses = append(responses, goodResumeJSON)
	}
	fx := newFixture(t, &scriptedGateway{responses: responses}, nil)

	for i := 0; i < analyzeLimit; i++ {
		_, err := fx.service.GenerateResume(context.Background(), "alice", ResumeProfile{})
		require.NoError(t, err)
	}

	_, err := fx.service.GenerateResume(context.Background(), "alice", ResumeProfile{})
	assert.True(t, IsRateLimited(err))
}
