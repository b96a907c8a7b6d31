package port

import (
	"context"

	"ragchat/internal/domain"
)

// Generator is a language-model backend for text generation. Options
// (temperature, output length, threads) are passed through unexamined.
type Generator interface {
	// Generate produces text for the prompt with the named model.
	Generate(ctx context.Context, model, prompt string, options map[string]any) (string, error)

	// Chat produces the next assistant message for a conversation.
	Chat(ctx context.Context, model string, messages []domain.Turn) (string, error)

	// ListModels returns the identifiers of the models the backend serves.
	ListModels(ctx context.Context) ([]string, error)
}

// HealthChecker probes backend readiness. Used by the startup retry loop.
type HealthChecker interface {
	Health(ctx context.Context) (domain.Health, error)
}
