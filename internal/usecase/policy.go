package usecase

import (
	"strings"
	"unicode"
)

// HeuristicWritePolicy is the data-quality gate in front of the knowledge
// store. It rejects filler, greetings and answers that echo prompt
// scaffolding or admit ignorance, so only substantive exchanges become
// future retrievable context. Thresholds and phrase lists are data,
// swappable without touching the session.
type HeuristicWritePolicy struct {
	MinAnswerLen   int
	LeakagePhrases []string
	GreetingWords  []string
}

// DefaultWritePolicy mirrors the tuned heuristics: ~10 character floor,
// prompt-scaffolding phrases, hello-class greeting tokens.
func DefaultWritePolicy() *HeuristicWritePolicy {
	return &HeuristicWritePolicy{
		MinAnswerLen: 10,
		LeakagePhrases: []string{
			"context:",
			"question:",
			"answer:",
			"i don't know",
			"i do not know",
			"no information found",
			"knowledge base context",
		},
		GreetingWords: []string{
			"hello", "hi", "hey",
			"привет", "здравствуй", "здравствуйте",
		},
	}
}

// ShouldPersist reports whether the (query, answer) pair is worth storing.
func (p *HeuristicWritePolicy) ShouldPersist(query, answer string) bool {
	answer = strings.TrimSpace(answer)
	if len([]rune(answer)) < p.MinAnswerLen {
		return false
	}

	answerLower := strings.ToLower(answer)
	for _, phrase := range p.LeakagePhrases {
		if strings.Contains(answerLower, phrase) {
			return false
		}
	}

	if containsWord(query, p.GreetingWords) {
		return false
	}

	// An answer without sentence-terminating punctuation is likely a
	// fragment, not a complete thought.
	if !strings.ContainsAny(answer, ".!?") {
		return false
	}

	return true
}

// containsWord matches whole words, not substrings: "hi" must not reject
// "think".
func containsWord(text string, words []string) bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
