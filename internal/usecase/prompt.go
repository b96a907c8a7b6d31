package usecase

import (
	"strings"

	"ragchat/internal/domain"
)

// Fixed template pieces. Assembly must stay deterministic, so the
// separator and placeholders are constants.
const (
	promptPreamble = "You are an assistant with access to a knowledge base. " +
		"Answer the question using the context below. " +
		"If the context does not contain the answer, say so explicitly instead of making something up."

	noContextPlaceholder = "No information found in the knowledge base."
	noHistoryPlaceholder = "(no previous conversation)"

	blockSeparator = "\n"
)

// PromptAssembler composes a bounded prompt from retrieved context, a
// trailing window of dialog history and the current query. Assembly is a
// pure function of its inputs.
type PromptAssembler struct {
	historyTail int
}

// NewPromptAssembler creates an assembler that includes the last
// historyTail turns in the prompt (4 by default: two user/assistant
// pairs).
func NewPromptAssembler(historyTail int) *PromptAssembler {
	if historyTail <= 0 {
		historyTail = 4
	}
	return &PromptAssembler{historyTail: historyTail}
}

// Assemble builds the prompt text.
func (a *PromptAssembler) Assemble(query string, contextTexts []string, history []domain.Turn) string {
	contextBlock := noContextPlaceholder
	if len(contextTexts) > 0 {
		contextBlock = strings.Join(contextTexts, blockSeparator)
	}

	historyBlock := noHistoryPlaceholder
	if len(history) > 0 {
		tail := history
		if len(tail) > a.historyTail {
			tail = tail[len(tail)-a.historyTail:]
		}
		lines := make([]string, len(tail))
		for i, turn := range tail {
			lines[i] = formatTurn(turn)
		}
		historyBlock = strings.Join(lines, blockSeparator)
	}

	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\n\nKnowledge base context:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nRecent conversation:\n")
	sb.WriteString(historyBlock)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

func formatTurn(t domain.Turn) string {
	switch t.Role {
	case domain.RoleAssistant:
		return "Assistant: " + t.Text
	default:
		return "User: " + t.Text
	}
}
