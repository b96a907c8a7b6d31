package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PreferenceStore maps normalized preference categories to values for the
// lifetime of a session. Last write wins; nothing is persisted beyond
// process termination.
type PreferenceStore struct {
	prefs map[string]string
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]string)}
}

func (s *PreferenceStore) Set(key, value string) {
	s.prefs[NormalizeKey(key)] = value
}

func (s *PreferenceStore) Get(key string) (string, bool) {
	v, ok := s.prefs[NormalizeKey(key)]
	return v, ok
}

// All returns a copy of the stored preferences.
func (s *PreferenceStore) All() map[string]string {
	out := make(map[string]string, len(s.prefs))
	for k, v := range s.prefs {
		out[k] = v
	}
	return out
}

func (s *PreferenceStore) Len() int {
	return len(s.prefs)
}

var (
	whatIsMyRe = regexp.MustCompile(`(?i)^\s*what(?:'s| is| are)\s+my\s+(.+?)\s*\??\s*$`)
	allPrefsRe = regexp.MustCompile(`(?i)^\s*what(?:'s| is| are)\s+my\s+preferences\s*\??\s*$`)
)

// AnswerDirect recognizes the two canonical question shapes — "what is my
// <category>" and "what are my preferences" — and answers them straight
// from the store, so matched questions never reach retrieval or
// generation. A recognized category with no stored value gets a fixed
// don't-know response instead of falling through.
func (s *PreferenceStore) AnswerDirect(query string) (string, bool) {
	if allPrefsRe.MatchString(query) {
		return s.describeAll(), true
	}

	m := whatIsMyRe.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}

	category := NormalizeKey(m[1])
	if value, ok := s.prefs[category]; ok {
		return fmt.Sprintf("Your %s is %s.", category, value), true
	}
	return fmt.Sprintf("I don't know your %s yet. Tell me and I'll remember it.", category), true
}

func (s *PreferenceStore) describeAll() string {
	if len(s.prefs) == 0 {
		return "I don't know any of your preferences yet. Tell me and I'll remember them."
	}

	keys := make([]string, 0, len(s.prefs))
	for k := range s.prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("your %s is %s", k, s.prefs[k])
	}
	return "Here is what I know: " + strings.Join(parts, "; ") + "."
}

// diacriticFolder collapses common accented Latin letters so variant
// spellings of a category normalize to the same key.
var diacriticFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o", "õ", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ý", "y",
)

// NormalizeKey lowercases, folds diacritics and collapses whitespace so
// "Favourite  Animal" and "favorite animal" address the same entry.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = diacriticFolder.Replace(key)
	key = strings.ReplaceAll(key, "favourite", "favorite")
	return strings.Join(strings.Fields(key), " ")
}
