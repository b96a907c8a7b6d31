package memstore

import (
	"testing"

	"ragchat/internal/domain"
)

func TestMemoryStoreSearchOrder(t *testing.T) {
	st := New(3)

	records := []domain.KnowledgeRecord{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 0, 1},
	}
	if err := st.Insert(records, vectors); err != nil {
		t.Fatal(err)
	}

	hits, err := st.Search([]float32{0.9, 0, 0.1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Text != "first" {
		t.Errorf("best hit = %q, want first", hits[0].Text)
	}

	count, err := st.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	st := New(3)

	err := st.Insert(
		[]domain.KnowledgeRecord{{ID: "bad", Text: "x"}},
		[][]float32{{1}},
	)
	if err == nil {
		t.Error("expected insert error for wrong dimension")
	}

	if _, err := st.Search([]float32{1}, 1); err == nil {
		t.Error("expected search error for wrong query dimension")
	}
}
