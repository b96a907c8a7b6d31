package port

import (
	"context"

	"ragchat/internal/domain"
)

// ContextSource retrieves up to k context texts for a query, best match
// first. The timing breakdown is informational.
type ContextSource interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, domain.Timing, error)
}

// MemoryWriter persists one text with provenance metadata and returns the
// assigned record ID.
type MemoryWriter interface {
	Remember(ctx context.Context, text string, meta domain.RecordMetadata) (string, error)
}

// FactExtractor parses a user utterance for a personal-preference
// statement. Implementations are pure functions over the utterance.
type FactExtractor interface {
	Extract(utterance string) (domain.Preference, bool)
}

// WritePolicy decides whether a completed (query, answer) exchange is
// durable enough to store back into the knowledge base.
type WritePolicy interface {
	ShouldPersist(query, answer string) bool
}
