package usecase

import (
	"strings"
	"testing"

	"ragchat/internal/domain"
)

func TestAssembleDeterministic(t *testing.T) {
	a := NewPromptAssembler(4)

	contextTexts := []string{"fact one", "fact two"}
	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "hi there"},
		{Role: domain.RoleAssistant, Text: "hello"},
	}

	first := a.Assemble("what is fact one?", contextTexts, history)
	second := a.Assemble("what is fact one?", contextTexts, history)
	if first != second {
		t.Fatal("same inputs must produce byte-identical prompts")
	}
}

func TestAssembleSections(t *testing.T) {
	a := NewPromptAssembler(4)

	prompt := a.Assemble("what is RAG?",
		[]string{"RAG combines retrieval with generation."},
		[]domain.Turn{
			{Role: domain.RoleUser, Text: "hello"},
			{Role: domain.RoleAssistant, Text: "hi, ask me anything"},
		})

	for _, want := range []string{
		"Knowledge base context:\nRAG combines retrieval with generation.",
		"Recent conversation:\nUser: hello\nAssistant: hi, ask me anything",
		"Question: what is RAG?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if !strings.HasSuffix(prompt, "Answer:") {
		t.Error("prompt must end with the answer cue")
	}
}

func TestAssemblePlaceholders(t *testing.T) {
	a := NewPromptAssembler(4)

	prompt := a.Assemble("anything?", nil, nil)

	if !strings.Contains(prompt, noContextPlaceholder) {
		t.Error("empty context must use the no-context placeholder")
	}
	if !strings.Contains(prompt, noHistoryPlaceholder) {
		t.Error("empty history must use the no-history placeholder")
	}
}

func TestAssembleHistoryTail(t *testing.T) {
	a := NewPromptAssembler(4)

	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "turn one"},
		{Role: domain.RoleAssistant, Text: "turn two"},
		{Role: domain.RoleUser, Text: "turn three"},
		{Role: domain.RoleAssistant, Text: "turn four"},
		{Role: domain.RoleUser, Text: "turn five"},
		{Role: domain.RoleAssistant, Text: "turn six"},
	}

	prompt := a.Assemble("q", nil, history)

	if strings.Contains(prompt, "turn one") || strings.Contains(prompt, "turn two") {
		t.Error("turns beyond the tail window leaked into the prompt")
	}
	for _, want := range []string{"turn three", "turn four", "turn five", "turn six"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing tail turn %q", want)
		}
	}
}

func TestAssembleDoesNotMutateInputs(t *testing.T) {
	a := NewPromptAssembler(2)

	history := []domain.Turn{
		{Role: domain.RoleUser, Text: "a"},
		{Role: domain.RoleAssistant, Text: "b"},
		{Role: domain.RoleUser, Text: "c"},
	}
	contextTexts := []string{"x", "y"}

	a.Assemble("q", contextTexts, history)

	if len(history) != 3 || history[0].Text != "a" {
		t.Error("history mutated by assembly")
	}
	if contextTexts[0] != "x" || contextTexts[1] != "y" {
		t.Error("context slice mutated by assembly")
	}
}
