package extractor

import (
	"regexp"
	"strings"

	"ragchat/internal/domain"
)

// Rule binds a pattern to a preference category. The first matching rule
// wins; the rule list is data so individual rules stay testable.
type Rule struct {
	Pattern  *regexp.Regexp
	Category string
}

// DefaultRules covers the personal-preference statements the session
// recognizes. Each pattern captures the stated value in group 1.
func DefaultRules() []Rule {
	return []Rule{
		{regexp.MustCompile(`(?i)\bmy favou?rite animal\b[\s:–-]*(.+)$`), "favorite animal"},
		{regexp.MustCompile(`(?i)\bmy favou?rite food\b[\s:–-]*(.+)$`), "favorite food"},
		{regexp.MustCompile(`(?i)\bmy favou?rite colou?r\b[\s:–-]*(.+)$`), "favorite color"},
		{regexp.MustCompile(`(?i)\bmy favou?rite (?:movie|film)\b[\s:–-]*(.+)$`), "favorite movie"},
		{regexp.MustCompile(`(?i)\bmy name is\b[\s:–-]*(.+)$`), "name"},
		{regexp.MustCompile(`(?i)\bi (?:really )?(?:like|love)\b\s+(.+)$`), "likes"},
	}
}

// animalVocabulary backs the lexical fallback: an utterance naming one of
// these alongside a favorite/like marker counts as a favorite-animal fact
// even when no pattern rule matches.
var animalVocabulary = []string{
	"cat", "dog", "kangaroo", "horse", "rabbit", "fox", "wolf", "bear",
	"owl", "dolphin", "penguin", "elephant", "tiger", "lion", "panda",
	"hamster", "parrot", "turtle",
}

var markerWords = []string{"favorite", "favourite", "like", "love"}

// connector tokens stripped from the head of a captured value.
var leadingConnectors = map[string]bool{
	"is": true, "are": true, "was": true,
	"a": true, "an": true, "the": true,
	"-": true, "–": true, "—": true, ":": true,
}

// Extractor parses user utterances for personal-preference statements.
type Extractor struct {
	rules []Rule
}

func New(rules []Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract applies the rule table first-match-wins, then the animal
// vocabulary fallback. It is a pure function over the utterance.
func (e *Extractor) Extract(utterance string) (domain.Preference, bool) {
	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		value := cleanValue(m[1])
		if len([]rune(value)) <= 1 {
			continue
		}
		return domain.Preference{Key: rule.Category, Value: value}, true
	}

	if animal, ok := matchAnimal(utterance); ok {
		return domain.Preference{Key: "favorite animal", Value: animal}, true
	}

	return domain.Preference{}, false
}

func matchAnimal(utterance string) (string, bool) {
	lower := strings.ToLower(utterance)

	hasMarker := false
	for _, marker := range markerWords {
		if strings.Contains(lower, marker) {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return "", false
	}

	for _, word := range strings.FieldsFunc(lower, isSeparator) {
		for _, animal := range animalVocabulary {
			if word == animal || word == animal+"s" {
				return animal, true
			}
		}
	}
	return "", false
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

// cleanValue trims connector tokens, punctuation and whitespace from a
// captured value.
func cleanValue(v string) string {
	words := strings.Fields(strings.TrimSpace(v))
	for len(words) > 0 && leadingConnectors[strings.ToLower(words[0])] {
		words = words[1:]
	}
	value := strings.Join(words, " ")
	return strings.Trim(value, " .,!?:;-–—")
}
