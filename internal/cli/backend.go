package cli

import (
	"fmt"

	"ragchat/config"
	"ragchat/internal/adapter/embedding"
	"ragchat/internal/adapter/llm"
	"ragchat/internal/adapter/store"
	"ragchat/internal/port"
	"ragchat/internal/usecase"
)

// newEmbedder builds the configured embedding client.
func newEmbedder() (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "ollama", "":
		return embedding.NewOllamaClient(e.Model, e.BaseURL).WithDimension(e.Dimension), nil
	case "openai":
		client, err := embedding.NewOpenAIClient(e.APIKeyEnv, e.Model, e.BaseURL)
		if err != nil {
			return nil, err
		}
		return client.WithDimension(e.Dimension), nil
	case "mock":
		dim := e.Dimension
		if dim == 0 {
			dim = 768
		}
		return embedding.NewMockEmbedder(dim), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", e.Provider)
	}
}

// openKnowledgeBase opens the local store and pairs it with the embedder.
// The caller owns the returned knowledge base and must Close it.
func openKnowledgeBase() (*usecase.KnowledgeBase, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDataDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewBoltKnowledgeStore(cfg.KnowledgeDBPath(rootDir), embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}

	return usecase.NewKnowledgeBase(embedder, st, logger), nil
}

// newGenerator builds the Ollama generation client.
func newGenerator() *llm.OllamaClient {
	return llm.NewOllamaClient(cfg.Model.BaseURL)
}

// newWritePolicy builds the memory write policy from config.
func newWritePolicy() *usecase.HeuristicWritePolicy {
	return &usecase.HeuristicWritePolicy{
		MinAnswerLen:   cfg.Memory.MinAnswerLen,
		LeakagePhrases: cfg.Memory.LeakagePhrases,
		GreetingWords:  cfg.Memory.GreetingWords,
	}
}
