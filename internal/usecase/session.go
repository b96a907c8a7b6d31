package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"ragchat/internal/domain"
	"ragchat/internal/port"
)

// maxQueryProvenance bounds the originating-query excerpt stored with a
// dialog-derived record.
const maxQueryProvenance = 80

// SessionOptions are the per-session tunables, supplied explicitly at
// construction.
type SessionOptions struct {
	Model          string
	TopK           int
	HistoryTail    int
	GenerateOption map[string]any
}

// DialogSession orchestrates one conversation: fact extraction,
// preference lookups, retrieval, prompt assembly, generation and the
// memory write policy. It is single-threaded by design; one query is
// fully resolved before the next is accepted, so history and preferences
// need no locking. For concurrent sessions, create one DialogSession per
// conversation.
type DialogSession struct {
	extractor port.FactExtractor
	prefs     *PreferenceStore
	retriever port.ContextSource
	generator port.Generator
	memory    port.MemoryWriter
	policy    port.WritePolicy
	assembler *PromptAssembler
	logger    *log.Logger
	opts      SessionOptions

	history []domain.Turn
}

func NewDialogSession(
	extractor port.FactExtractor,
	retriever port.ContextSource,
	generator port.Generator,
	memory port.MemoryWriter,
	policy port.WritePolicy,
	logger *log.Logger,
	opts SessionOptions,
) *DialogSession {
	if opts.TopK < 1 {
		opts.TopK = 3
	}
	return &DialogSession{
		extractor: extractor,
		prefs:     NewPreferenceStore(),
		retriever: retriever,
		generator: generator,
		memory:    memory,
		policy:    policy,
		assembler: NewPromptAssembler(opts.HistoryTail),
		logger:    logger,
		opts:      opts,
	}
}

// Process resolves one query through the pipeline, strictly ordered:
//
//  1. fact extraction (short-circuits to a confirmation)
//  2. direct preference question (short-circuits to the stored value)
//  3. retrieve -> assemble -> generate
//  4. history append, on every path
//  5. write policy + persistence, on the generated path only
//
// An empty query is a no-op. Backend failures come back as a literal
// error answer; they never crash the session.
func (s *DialogSession) Process(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	if fact, ok := s.extractor.Extract(query); ok {
		s.prefs.Set(fact.Key, fact.Value)
		answer := fmt.Sprintf("Got it, I'll remember that your %s is %s.", NormalizeKey(fact.Key), fact.Value)
		s.logger.Info("stored preference", "key", fact.Key, "value", fact.Value)
		s.appendTurns(query, answer)
		return answer
	}

	if answer, ok := s.prefs.AnswerDirect(query); ok {
		s.logger.Debug("answered from preferences", "query", query)
		s.appendTurns(query, answer)
		return answer
	}

	answer, generated := s.generate(ctx, query)
	s.appendTurns(query, answer)

	if generated && s.policy.ShouldPersist(query, answer) {
		s.persist(ctx, query, answer)
	}

	return answer
}

// generate runs the retrieval-augmented path. The bool result reports
// whether the backend actually produced the answer; error answers are
// never candidates for persistence.
func (s *DialogSession) generate(ctx context.Context, query string) (string, bool) {
	contextTexts, timing, err := s.retriever.Retrieve(ctx, query, s.opts.TopK)
	if err != nil {
		// Retrieval failure degrades to "no context" rather than
		// aborting the query.
		s.logger.Warn("retrieval failed, continuing without context", "error", err)
		contextTexts = nil
	} else {
		s.logger.Debug("retrieval done",
			"documents", len(contextTexts),
			"embed", timing.Embed,
			"search", timing.Search)
	}

	prompt := s.assembler.Assemble(query, contextTexts, s.history)

	start := time.Now()
	answer, err := s.generator.Generate(ctx, s.opts.Model, prompt, s.opts.GenerateOption)
	if err != nil {
		s.logger.Error("generation failed", "model", s.opts.Model, "error", err)
		return fmt.Sprintf("Sorry, I couldn't generate an answer: %v", err), false
	}

	s.logger.Info("generated answer",
		"model", s.opts.Model,
		"documents", len(contextTexts),
		"took", time.Since(start))

	return strings.TrimSpace(answer), true
}

// persist splits an accepted exchange into a question record and an
// answer record, each with dialog provenance. A failed insert is logged
// and dropped; the answer has already been returned to the user.
func (s *DialogSession) persist(ctx context.Context, query, answer string) {
	meta := domain.RecordMetadata{
		Source:    domain.SourceDialog,
		Type:      "dialog",
		Timestamp: time.Now().Format(time.RFC3339),
		Query:     truncate(query, maxQueryProvenance),
	}

	for _, text := range []string{"Question: " + query, "Answer: " + answer} {
		if _, err := s.memory.Remember(ctx, text, meta); err != nil {
			s.logger.Error("failed to persist exchange", "error", err)
			return
		}
	}
	s.logger.Info("exchange saved to memory")
}

// appendTurns records the exchange in the in-memory history. History is
// append-only and unbounded for the session's lifetime; the prompt only
// ever sees the configured tail.
func (s *DialogSession) appendTurns(query, answer string) {
	s.history = append(s.history,
		domain.Turn{Role: domain.RoleUser, Text: query},
		domain.Turn{Role: domain.RoleAssistant, Text: answer},
	)
}

// History returns a copy of the session's dialog history.
func (s *DialogSession) History() []domain.Turn {
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen returns the number of recorded turns.
func (s *DialogSession) HistoryLen() int {
	return len(s.history)
}

// Preferences returns the session's preference store.
func (s *DialogSession) Preferences() *PreferenceStore {
	return s.prefs
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
