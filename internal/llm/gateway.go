package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/vector-ai/vector-backend/internal/logger"
)

// Gateway dispatches a conversation across an ordered provider chain,
// short-circuiting on the first success. Adding a provider is appending to
// the chain.
type Gateway struct {
	providers []Client
	log       *zap.Logger
}

// NewGateway builds a gateway over the given providers, tried in order.
func NewGateway(log *zap.Logger, providers ...Client) *Gateway {
	return &Gateway{providers: providers, log: log}
}

// Dispatch sends the conversation to each provider in turn and returns the
// first successful completion. When every provider fails it returns a
// *ProviderError naming each cause.
func (g *Gateway) Dispatch(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	var attempts []Attempt
	for _, p := range g.providers {
		text, err := p.Generate(ctx, messages)
		if err == nil {
			g.log.Debug("llm dispatch succeeded",
				zap.String("provider", p.Name()),
				zap.String("completion", logger.Truncate(text, 120)))
			return text, nil
		}
		g.log.Warn("llm provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.Error(err))
		attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
	}

	return "", &ProviderError{Attempts: attempts}
}
