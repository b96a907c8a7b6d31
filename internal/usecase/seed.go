package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"

	"ragchat/internal/adapter/fs"
	"ragchat/internal/domain"
)

// StarterFacts is the built-in starter knowledge loaded by `ragchat seed`.
var StarterFacts = []string{
	"Machine learning is a branch of artificial intelligence that lets computers learn from data.",
	"Python is a popular programming language for data analysis and machine learning.",
	"RAG (Retrieval-Augmented Generation) is an architecture that combines information retrieval with text generation.",
	"Ollama is a platform for running large language models locally on your computer.",
	"A vector database stores information as numeric vectors for semantic search.",
}

// minFactLen filters out fragments when splitting seed files.
const minFactLen = 20

// Seeder loads seed knowledge into the knowledge base: the built-in
// starter facts and any files matched by the configured glob patterns.
type Seeder struct {
	kb     *KnowledgeBase
	logger *log.Logger
}

func NewSeeder(kb *KnowledgeBase, logger *log.Logger) *Seeder {
	return &Seeder{kb: kb, logger: logger}
}

// SeedStarter inserts the built-in starter facts. Returns the number of
// facts stored.
func (s *Seeder) SeedStarter(ctx context.Context) (int, error) {
	return s.seedTexts(ctx, StarterFacts, "Seeding starter facts")
}

// SeedFiles loads all files under root matching the include patterns,
// splits them into paragraph-sized facts and stores them with seed
// provenance. Returns the number of facts stored.
func (s *Seeder) SeedFiles(ctx context.Context, root string, includes, excludes []string) (int, error) {
	walker := fs.NewWalker(includes, excludes)
	paths, err := walker.Walk(root)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	var facts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		facts = append(facts, SplitFacts(string(data))...)
	}

	if len(facts) == 0 {
		return 0, nil
	}

	s.logger.Info("loading seed files", "files", len(paths), "facts", len(facts))
	return s.seedTexts(ctx, facts, "Seeding knowledge files")
}

func (s *Seeder) seedTexts(ctx context.Context, texts []string, description string) (int, error) {
	bar := progressbar.NewOptions(len(texts),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	stored := 0
	for _, text := range texts {
		meta := domain.RecordMetadata{
			Source: domain.SourceSeed,
			Type:   "fact",
		}
		if _, err := s.kb.Remember(ctx, text, meta); err != nil {
			s.logger.Error("failed to store fact", "error", err)
			_ = bar.Add(1)
			continue
		}
		stored++
		_ = bar.Add(1)
	}

	if stored < len(texts) {
		return stored, fmt.Errorf("stored %d of %d facts", stored, len(texts))
	}
	return stored, nil
}

// SplitFacts splits file content into paragraph-sized facts: blank-line
// separated blocks, trimmed, with fragments below minFactLen dropped.
func SplitFacts(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var facts []string
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(block, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(line)
		}
		fact := strings.TrimSpace(strings.Join(lines, " "))
		if len([]rune(fact)) >= minFactLen {
			facts = append(facts, fact)
		}
	}
	return facts
}
