package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient is a scripted provider for gateway tests.
type fakeClient struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Generate(_ context.Context, _ []Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestDispatchFirstProviderWins(t *testing.T) {
	first := &fakeClient{name: "openrouter", text: "ответ"}
	second := &fakeClient{name: "ollama", text: "другой"}
	gw := NewGateway(zap.NewNop(), first, second)

	text, err := gw.Dispatch(context.Background(), []Message{User("привет")})

	require.NoError(t, err)
	assert.Equal(t, "ответ", text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "second provider must not be called on success")
}

func TestDispatchFallsBackOnFailure(t *testing.T) {
	// Provider A times out, provider B answers: the caller sees only B's text.
	first := &fakeClient{name: "openrouter", err: context.DeadlineExceeded}
	second := &fakeClient{name: "ollama", text: `{"skills":["навык"]}`}
	gw := NewGateway(zap.NewNop(), first, second)

	text, err := gw.Dispatch(context.Background(), []Message{User("извлеки навыки")})

	require.NoError(t, err)
	assert.Equal(t, `{"skills":["навык"]}`, text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestDispatchAllProvidersFail(t *testing.T) {
	errA := errors.New("connection refused")
	errB := errors.New("bad status 500")
	gw := NewGateway(zap.NewNop(),
		&fakeClient{name: "openrouter", err: errA},
		&fakeClient{name: "ollama", err: errB},
	)

	_, err := gw.Dispatch(context.Background(), []Message{User("привет")})

	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Len(t, provErr.Attempts, 2)
	assert.Equal(t, "openrouter", provErr.Attempts[0].Provider)
	assert.Equal(t, "ollama", provErr.Attempts[1].Provider)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Contains(t, err.Error(), "openrouter: connection refused")
	assert.Contains(t, err.Error(), "ollama: bad status 500")
}

func TestDispatchRejectsEmptyContent(t *testing.T) {
	provider := &fakeClient{name: "openrouter", text: "x"}
	gw := NewGateway(zap.NewNop(), provider)

	_, err := gw.Dispatch(context.Background(), []Message{User("ok"), {Role: RoleSystem, Content: "  "}})

	assert.Error(t, err)
	assert.Equal(t, 0, provider.calls)
}

func TestDispatchRejectsEmptyConversation(t *testing.T) {
	gw := NewGateway(zap.NewNop(), &fakeClient{name: "openrouter", text: "x"})

	_, err := gw.Dispatch(context.Background(), nil)

	assert.Error(t, err)
}

func TestFlattenMessages(t *testing.T) {
	prompt := flattenMessages([]Message{
		System("Ты интервьюер."),
		User("Привет"),
		Assistant("Чем ты увлекаешься?"),
		User("Программированием"),
	})

	assert.Contains(t, prompt, "SYSTEM:\nТы интервьюер.")
	assert.Contains(t, prompt, "USER:\nПривет")
	assert.Contains(t, prompt, "ASSISTANT:\nЧем ты увлекаешься?")
	assert.True(t, len(prompt) > 0)
	assert.Equal(t, "\n\nASSISTANT:\n", prompt[len(prompt)-len("\n\nASSISTANT:\n"):],
		"prompt must end with an open assistant turn")
}
