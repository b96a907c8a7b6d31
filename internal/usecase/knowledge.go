package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ragchat/internal/domain"
	"ragchat/internal/port"
)

// KnowledgeBase pairs an embedder with a knowledge store. It is the
// in-process backend: the context retriever and memory writer for the
// dialog session, and the engine behind the HTTP API.
type KnowledgeBase struct {
	embedder port.Embedder
	store    port.KnowledgeStore
	logger   *log.Logger
}

func NewKnowledgeBase(embedder port.Embedder, store port.KnowledgeStore, logger *log.Logger) *KnowledgeBase {
	return &KnowledgeBase{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Retrieve embeds the query and returns the k nearest stored texts, best
// match first. Embedding and search are timed separately.
func (kb *KnowledgeBase) Retrieve(ctx context.Context, query string, k int) ([]string, domain.Timing, error) {
	if k < 1 {
		k = 1
	}

	var timing domain.Timing
	start := time.Now()

	vectors, err := kb.embedder.Embed([]string{query})
	timing.Embed = time.Since(start)
	if err != nil {
		return nil, timing, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, timing, fmt.Errorf("embedding returned empty result")
	}

	searchStart := time.Now()
	hits, err := kb.store.Search(vectors[0], k)
	timing.Search = time.Since(searchStart)
	timing.Total = time.Since(start)
	if err != nil {
		return nil, timing, fmt.Errorf("vector search failed: %w", err)
	}

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}

	kb.logger.Debug("retrieved context",
		"query", query,
		"hits", len(texts),
		"embed", timing.Embed,
		"search", timing.Search)

	return texts, timing, nil
}

// Remember embeds one text and inserts it with the given provenance.
// Returns the assigned record ID.
func (kb *KnowledgeBase) Remember(ctx context.Context, text string, meta domain.RecordMetadata) (string, error) {
	ids, err := kb.RememberBatch(ctx, []string{text}, []domain.RecordMetadata{meta})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// RememberBatch embeds texts and inserts them in one store transaction.
func (kb *KnowledgeBase) RememberBatch(ctx context.Context, texts []string, metas []domain.RecordMetadata) ([]string, error) {
	if len(texts) != len(metas) {
		return nil, fmt.Errorf("texts/metadata length mismatch: %d vs %d", len(texts), len(metas))
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := kb.embedder.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}

	records := make([]domain.KnowledgeRecord, len(texts))
	ids := make([]string, len(texts))
	for i, text := range texts {
		ids[i] = uuid.NewString()
		records[i] = domain.KnowledgeRecord{
			ID:       ids[i],
			Text:     text,
			Metadata: metas[i],
		}
	}

	if err := kb.store.Insert(records, vectors); err != nil {
		return nil, fmt.Errorf("failed to insert records: %w", err)
	}

	kb.logger.Debug("stored records", "count", len(records))
	return ids, nil
}

// Count returns the number of records in the knowledge store.
func (kb *KnowledgeBase) Count() (int, error) {
	return kb.store.Count()
}

func (kb *KnowledgeBase) Close() error {
	return kb.store.Close()
}
