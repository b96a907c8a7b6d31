package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"ragchat/internal/domain"
)

// MemoryKnowledgeStore keeps knowledge records in memory. Used by tests
// and by ephemeral runs that do not need the store to outlive the
// process.
type MemoryKnowledgeStore struct {
	mu        sync.RWMutex
	dimension int
	records   map[string]entry
}

type entry struct {
	vector []float32
	text   string
	meta   domain.RecordMetadata
}

func New(dimension int) *MemoryKnowledgeStore {
	return &MemoryKnowledgeStore{
		dimension: dimension,
		records:   make(map[string]entry),
	}
}

func (s *MemoryKnowledgeStore) Insert(records []domain.KnowledgeRecord, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records/vectors length mismatch: %d vs %d", len(records), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range records {
		if len(vectors[i]) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(vectors[i]))
		}
		s.records[rec.ID] = entry{
			vector: vectors[i],
			text:   rec.Text,
			meta:   rec.Metadata,
		}
	}

	return nil
}

func (s *MemoryKnowledgeStore) Search(query []float32, k int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	if len(s.records) == 0 {
		return nil, nil
	}

	hits := make([]domain.SearchHit, 0, len(s.records))
	for _, e := range s.records {
		hits = append(hits, domain.SearchHit{
			Text:     e.text,
			Score:    cosine(query, e.vector),
			Metadata: e.meta,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}

	return hits[:k], nil
}

func (s *MemoryKnowledgeStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryKnowledgeStore) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
