package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"ragchat/internal/domain"
)

var bucketKnowledge = []byte("knowledge")

// BoltKnowledgeStore persists knowledge records with their embedding
// vectors in BoltDB. Search is brute-force cosine similarity over an
// in-memory copy; fine at dialog-memory scale, replaceable with an ANN
// index for larger corpora.
type BoltKnowledgeStore struct {
	db        *bbolt.DB
	dimension int
	mu        sync.RWMutex
	records   map[string]recordEntry
}

type recordEntry struct {
	vector []float32
	text   string
	meta   domain.RecordMetadata
}

type storedRecord struct {
	Vector   []float32             `json:"v"`
	Text     string                `json:"t"`
	Metadata domain.RecordMetadata `json:"m"`
}

// NewBoltKnowledgeStore opens (or creates) the database at path.
func NewBoltKnowledgeStore(path string, dimension int) (*BoltKnowledgeStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKnowledge)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create knowledge bucket: %w", err)
	}

	s := &BoltKnowledgeStore{
		db:        db,
		dimension: dimension,
		records:   make(map[string]recordEntry),
	}

	if err := s.loadRecords(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	return s, nil
}

func (s *BoltKnowledgeStore) loadRecords() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKnowledge)
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			s.records[string(k)] = recordEntry{
				vector: stored.Vector,
				text:   stored.Text,
				meta:   stored.Metadata,
			}
			return nil
		})
	})
}

// Insert stores records with their vectors in a single transaction, so a
// partially-written record is never visible.
func (s *BoltKnowledgeStore) Insert(records []domain.KnowledgeRecord, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records/vectors length mismatch: %d vs %d", len(records), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKnowledge)
		if b == nil {
			return fmt.Errorf("knowledge bucket not found")
		}

		for i, rec := range records {
			if len(vectors[i]) != s.dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(vectors[i]))
			}

			data, err := json.Marshal(storedRecord{
				Vector:   vectors[i],
				Text:     rec.Text,
				Metadata: rec.Metadata,
			})
			if err != nil {
				return err
			}

			if err := b.Put([]byte(rec.ID), data); err != nil {
				return err
			}

			s.records[rec.ID] = recordEntry{
				vector: vectors[i],
				text:   rec.Text,
				meta:   rec.Metadata,
			}
		}

		return nil
	})
}

// Search finds the k nearest records to the query using cosine similarity.
func (s *BoltKnowledgeStore) Search(query []float32, k int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	if len(s.records) == 0 {
		return nil, nil
	}

	hits := make([]domain.SearchHit, 0, len(s.records))
	for _, entry := range s.records {
		hits = append(hits, domain.SearchHit{
			Text:     entry.text,
			Score:    cosineSimilarity(query, entry.vector),
			Metadata: entry.meta,
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

// Count returns the number of records in the store.
func (s *BoltKnowledgeStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *BoltKnowledgeStore) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
