package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"ragchat/internal/adapter/extractor"
	"ragchat/internal/domain"
)

type fakeRetriever struct {
	texts []string
	err   error
	calls int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, domain.Timing, error) {
	f.calls++
	return f.texts, domain.Timing{}, f.err
}

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, options map[string]any) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.answer, f.err
}

func (f *fakeGenerator) Chat(ctx context.Context, model string, messages []domain.Turn) (string, error) {
	return f.answer, f.err
}

func (f *fakeGenerator) ListModels(ctx context.Context) ([]string, error) {
	return []string{"test-model"}, nil
}

type fakeMemory struct {
	texts []string
	metas []domain.RecordMetadata
	err   error
}

func (f *fakeMemory) Remember(ctx context.Context, text string, meta domain.RecordMetadata) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, text)
	f.metas = append(f.metas, meta)
	return fmt.Sprintf("id-%d", len(f.texts)), nil
}

func newTestSession(ret *fakeRetriever, gen *fakeGenerator, mem *fakeMemory) *DialogSession {
	return NewDialogSession(
		extractor.New(nil),
		ret,
		gen,
		mem,
		DefaultWritePolicy(),
		log.New(io.Discard),
		SessionOptions{Model: "test-model", TopK: 3, HistoryTail: 4},
	)
}

func TestProcessEmptyQuery(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{}
	s := newTestSession(ret, gen, &fakeMemory{})

	if answer := s.Process(context.Background(), "   "); answer != "" {
		t.Errorf("blank query returned %q, want empty", answer)
	}
	if ret.calls != 0 || gen.calls != 0 {
		t.Error("blank query must not reach the backend")
	}
	if s.HistoryLen() != 0 {
		t.Error("blank query must not enter history")
	}
}

func TestProcessPreferenceRoundTrip(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{}
	mem := &fakeMemory{}
	s := newTestSession(ret, gen, mem)
	ctx := context.Background()

	answer := s.Process(ctx, "my favorite animal is a kangaroo")
	if answer != "Got it, I'll remember that your favorite animal is kangaroo." {
		t.Errorf("confirmation = %q", answer)
	}

	answer = s.Process(ctx, "what is my favorite animal?")
	if answer != "Your favorite animal is kangaroo." {
		t.Errorf("recall = %q", answer)
	}

	// Both exchanges short-circuit before the backend.
	if ret.calls != 0 || gen.calls != 0 {
		t.Errorf("backend touched: retrieve=%d generate=%d", ret.calls, gen.calls)
	}
	if len(mem.texts) != 0 {
		t.Errorf("preference exchanges persisted: %v", mem.texts)
	}
	if s.HistoryLen() != 4 {
		t.Errorf("history = %d turns, want 4", s.HistoryLen())
	}
}

func TestProcessGeneratedAnswerPersisted(t *testing.T) {
	ret := &fakeRetriever{texts: []string{"RAG combines retrieval with generation."}}
	gen := &fakeGenerator{answer: "RAG retrieves relevant facts and feeds them to the model."}
	mem := &fakeMemory{}
	s := newTestSession(ret, gen, mem)

	answer := s.Process(context.Background(), "what is RAG?")
	if answer != gen.answer {
		t.Errorf("answer = %q", answer)
	}

	if len(mem.texts) != 2 {
		t.Fatalf("persisted %d records, want 2", len(mem.texts))
	}
	if mem.texts[0] != "Question: what is RAG?" {
		t.Errorf("question record = %q", mem.texts[0])
	}
	if mem.texts[1] != "Answer: "+gen.answer {
		t.Errorf("answer record = %q", mem.texts[1])
	}
	for _, meta := range mem.metas {
		if meta.Source != domain.SourceDialog || meta.Type != "dialog" {
			t.Errorf("bad provenance: %+v", meta)
		}
		if meta.Timestamp == "" {
			t.Error("missing timestamp")
		}
		if meta.Query != "what is RAG?" {
			t.Errorf("query provenance = %q", meta.Query)
		}
	}
}

func TestProcessGreetingNotPersisted(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{answer: "Hello! How can I help you today? Ask me anything you like."}
	mem := &fakeMemory{}
	s := newTestSession(ret, gen, mem)

	answer := s.Process(context.Background(), "hello")
	if answer != gen.answer {
		t.Errorf("answer = %q", answer)
	}
	if len(mem.texts) != 0 {
		t.Errorf("greeting exchange persisted: %v", mem.texts)
	}
	if s.HistoryLen() != 2 {
		t.Errorf("history = %d turns, want 2", s.HistoryLen())
	}
}

func TestProcessGenerationFailure(t *testing.T) {
	ret := &fakeRetriever{texts: []string{"some context"}}
	gen := &fakeGenerator{err: &domain.BackendError{Op: "generate", Err: fmt.Errorf("connection refused")}}
	mem := &fakeMemory{}
	s := newTestSession(ret, gen, mem)

	answer := s.Process(context.Background(), "what is RAG?")
	if !strings.HasPrefix(answer, "Sorry, I couldn't generate an answer:") {
		t.Errorf("answer = %q", answer)
	}

	// The error answer enters history but never memory.
	if s.HistoryLen() != 2 {
		t.Errorf("history = %d turns, want 2", s.HistoryLen())
	}
	if len(mem.texts) != 0 {
		t.Errorf("error answer persisted: %v", mem.texts)
	}
}

func TestProcessRetrievalFailureDegrades(t *testing.T) {
	ret := &fakeRetriever{err: fmt.Errorf("store offline")}
	gen := &fakeGenerator{answer: "I can still answer from general knowledge, carefully."}
	mem := &fakeMemory{}
	s := newTestSession(ret, gen, mem)

	answer := s.Process(context.Background(), "what is RAG?")
	if answer != gen.answer {
		t.Errorf("answer = %q", answer)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if !strings.Contains(gen.lastPrompt, noContextPlaceholder) {
		t.Error("failed retrieval must degrade to the no-context placeholder")
	}
}

func TestProcessPersistFailureDoesNotChangeAnswer(t *testing.T) {
	ret := &fakeRetriever{texts: []string{"fact"}}
	gen := &fakeGenerator{answer: "A perfectly substantive answer that deserves storing."}
	mem := &fakeMemory{err: fmt.Errorf("disk full")}
	s := newTestSession(ret, gen, mem)

	answer := s.Process(context.Background(), "what is RAG?")
	if answer != gen.answer {
		t.Errorf("persist failure changed the answer: %q", answer)
	}
}

func TestProcessHistoryFlowsIntoPrompt(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{answer: "Generated answer with enough substance to persist, easily."}
	s := newTestSession(ret, gen, &fakeMemory{})
	ctx := context.Background()

	s.Process(ctx, "tell me about vector search")
	s.Process(ctx, "and what about indexes?")

	if !strings.Contains(gen.lastPrompt, "User: tell me about vector search") {
		t.Error("earlier turn missing from second prompt")
	}
}
