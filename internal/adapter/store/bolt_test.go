package store

import (
	"path/filepath"
	"testing"

	"ragchat/internal/domain"
)

func testRecords() ([]domain.KnowledgeRecord, [][]float32) {
	records := []domain.KnowledgeRecord{
		{ID: "r1", Text: "cats are mammals", Metadata: domain.RecordMetadata{Source: domain.SourceSeed}},
		{ID: "r2", Text: "the sky is blue", Metadata: domain.RecordMetadata{Source: domain.SourceSeed}},
		{ID: "r3", Text: "dogs are mammals too", Metadata: domain.RecordMetadata{Source: domain.SourceDialog}},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	return records, vectors
}

func TestBoltStoreInsertAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := NewBoltKnowledgeStore(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	records, vectors := testRecords()
	if err := st.Insert(records, vectors); err != nil {
		t.Fatal(err)
	}

	count, err := st.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("Count = %d, want 3", count)
	}

	hits, err := st.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Text != "cats are mammals" {
		t.Errorf("best hit = %q, want the exact-match vector", hits[0].Text)
	}
	if hits[1].Text != "dogs are mammals too" {
		t.Errorf("second hit = %q, want the near vector", hits[1].Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not sorted by descending score")
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := NewBoltKnowledgeStore(path, 3)
	if err != nil {
		t.Fatal(err)
	}

	records, vectors := testRecords()
	if err := st.Insert(records, vectors); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = NewBoltKnowledgeStore(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	count, err := st.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("after reopen Count = %d, want 3", count)
	}

	hits, err := st.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Text != "the sky is blue" {
		t.Errorf("after reopen best hit = %v", hits)
	}
	if hits[0].Metadata.Source != domain.SourceSeed {
		t.Errorf("metadata lost on reopen: %+v", hits[0].Metadata)
	}
}

func TestBoltStoreDimensionMismatch(t *testing.T) {
	st, err := NewBoltKnowledgeStore(filepath.Join(t.TempDir(), "test.db"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	err = st.Insert(
		[]domain.KnowledgeRecord{{ID: "bad", Text: "wrong size"}},
		[][]float32{{1, 0}},
	)
	if err == nil {
		t.Error("expected insert error for wrong vector dimension")
	}

	if _, err := st.Search([]float32{1, 0}, 1); err == nil {
		t.Error("expected search error for wrong query dimension")
	}
}

func TestBoltStoreSearchEmpty(t *testing.T) {
	st, err := NewBoltKnowledgeStore(filepath.Join(t.TempDir(), "test.db"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	hits, err := st.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("empty store returned hits: %v", hits)
	}
}

func TestBoltStoreTopKClamped(t *testing.T) {
	st, err := NewBoltKnowledgeStore(filepath.Join(t.TempDir(), "test.db"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	records, vectors := testRecords()
	if err := st.Insert(records, vectors); err != nil {
		t.Fatal(err)
	}

	hits, err := st.Search([]float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want all 3", len(hits))
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 0}, []float32{-1, 0}, -1},
		{[]float32{0, 0}, []float32{1, 0}, 0},
		{[]float32{1, 0}, []float32{1, 0, 0}, 0},
	}

	for _, tt := range tests {
		got := cosineSimilarity(tt.a, tt.b)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
