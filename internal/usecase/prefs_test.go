package usecase

import "testing"

func TestPreferenceStoreRoundTrip(t *testing.T) {
	s := NewPreferenceStore()

	s.Set("favorite animal", "kangaroo")

	v, ok := s.Get("favorite animal")
	if !ok || v != "kangaroo" {
		t.Fatalf("Get = (%q, %v), want (kangaroo, true)", v, ok)
	}

	// Last write wins.
	s.Set("favorite animal", "owl")
	if v, _ := s.Get("favorite animal"); v != "owl" {
		t.Errorf("after overwrite Get = %q, want owl", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Favourite  Animal", "favorite animal"},
		{"favorite animal", "favorite animal"},
		{"  FAVOURITE COLOUR ", "favorite colour"},
		{"café preference", "cafe preference"},
		{"name", "name"},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizedKeysShareEntry(t *testing.T) {
	s := NewPreferenceStore()
	s.Set("Favourite Animal", "kangaroo")

	if v, ok := s.Get("favorite  animal"); !ok || v != "kangaroo" {
		t.Fatalf("variant spelling did not resolve: (%q, %v)", v, ok)
	}
}

func TestAnswerDirect(t *testing.T) {
	s := NewPreferenceStore()
	s.Set("favorite animal", "kangaroo")

	answer, ok := s.AnswerDirect("what is my favorite animal?")
	if !ok {
		t.Fatal("expected direct answer")
	}
	if answer != "Your favorite animal is kangaroo." {
		t.Errorf("answer = %q", answer)
	}

	// Recognized category, nothing stored: fixed don't-know response.
	answer, ok = s.AnswerDirect("what's my favorite food")
	if !ok {
		t.Fatal("expected don't-know response, not a fallthrough")
	}
	if answer != "I don't know your favorite food yet. Tell me and I'll remember it." {
		t.Errorf("answer = %q", answer)
	}

	// Not a preference question at all.
	if _, ok := s.AnswerDirect("what is the capital of France?"); ok {
		t.Error("non-preference question must not be answered directly")
	}
}

func TestAnswerDirectAllPreferences(t *testing.T) {
	s := NewPreferenceStore()

	answer, ok := s.AnswerDirect("what are my preferences?")
	if !ok {
		t.Fatal("expected direct answer for empty store")
	}
	if answer != "I don't know any of your preferences yet. Tell me and I'll remember them." {
		t.Errorf("answer = %q", answer)
	}

	s.Set("favorite animal", "kangaroo")
	s.Set("name", "Alice")

	answer, ok = s.AnswerDirect("What are my preferences")
	if !ok {
		t.Fatal("expected direct answer")
	}
	// Keys are listed in sorted order.
	want := "Here is what I know: your favorite animal is kangaroo; your name is Alice."
	if answer != want {
		t.Errorf("answer = %q, want %q", answer, want)
	}
}
