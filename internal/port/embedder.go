package port

import "ragchat/internal/domain"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// KnowledgeStore persists (vector, text, metadata) records and searches
// them by vector similarity. Each Insert is a single atomic write.
type KnowledgeStore interface {
	// Insert stores records with their embedding vectors.
	// len(records) must equal len(vectors).
	Insert(records []domain.KnowledgeRecord, vectors [][]float32) error

	// Search finds the k nearest records to the query vector,
	// best match first.
	Search(query []float32, k int) ([]domain.SearchHit, error)

	// Count returns the number of records in the store.
	Count() (int, error)

	Close() error
}
