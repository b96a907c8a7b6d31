package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedBatchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}

		// Answer out of order; the client must reassemble by index.
		resp := embeddingResponse{
			Data: []embeddingData{
				{Embedding: []float32{2}, Index: 1},
				{Embedding: []float32{1}, Index: 0},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewOllamaClient("nomic-embed-text", srv.URL)

	vectors, err := c.Embed([]string{"first", "second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Errorf("vectors out of input order: %v", vectors)
	}
}

func TestEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Error: &apiError{Message: "model not found", Type: "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient("nope", srv.URL)
	if _, err := c.Embed([]string{"text"}); err == nil {
		t.Fatal("expected error from the API error field")
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	c := NewOllamaClient("nomic-embed-text", "http://127.0.0.1:1")
	vectors, err := c.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors != nil {
		t.Errorf("empty input produced vectors: %v", vectors)
	}
}

func TestKnownModelDimensions(t *testing.T) {
	if d := NewOllamaClient("nomic-embed-text", "").Dimension(); d != 768 {
		t.Errorf("nomic-embed-text dimension = %d, want 768", d)
	}
	if d := NewOllamaClient("mxbai-embed-large", "").Dimension(); d != 1024 {
		t.Errorf("mxbai-embed-large dimension = %d, want 1024", d)
	}
	if d := NewOllamaClient("unknown", "").WithDimension(512).Dimension(); d != 512 {
		t.Errorf("override dimension = %d, want 512", d)
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)

	a, err := e.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("mock embeddings must be deterministic")
		}
	}
	if len(a[0]) != 8 {
		t.Errorf("dimension = %d, want 8", len(a[0]))
	}
}
