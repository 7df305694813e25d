package tokenizer

import (
	"strings"
	"testing"
)

func newTestCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := NewCounter()
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}
	return c
}

func TestTokenLen_Cached(t *testing.T) {
	c := newTestCounter(t)

	text := "The quick brown fox jumps over the lazy dog."
	first := c.TokenLen(text)
	second := c.TokenLen(text)
	if first != second {
		t.Errorf("cached count %d != first count %d", second, first)
	}
	if first <= 0 {
		t.Errorf("expected positive token count, got %d", first)
	}
}

func TestSplitToFit_IdentityWhenWithinLimit(t *testing.T) {
	c := newTestCounter(t)

	text := "Short sentence."
	ctx := c.TokenLen(text)
	pieces := c.SplitToFit(text, ctx)
	if len(pieces) != 1 || pieces[0] != text {
		t.Errorf("SplitToFit within limit = %v, want [%q]", pieces, text)
	}
}

func TestSplitToFit_AllPiecesWithinLimit(t *testing.T) {
	c := newTestCounter(t)

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("This is a complete sentence about retrieval systems. ")
	}
	text := strings.TrimSpace(b.String())

	const ctx = 100
	pieces := c.SplitToFit(text, ctx)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if n := c.TokenLen(p); n > ctx {
			t.Errorf("piece %d has %d tokens, limit %d", i, n, ctx)
		}
		if p == "" {
			t.Errorf("piece %d is empty", i)
		}
	}
}

func TestSplitAtSentenceBoundary_PrefersPunctuation(t *testing.T) {
	left := strings.Repeat("a", 150) + "."
	text := left + " " + strings.Repeat("b", 160)

	gotLeft, gotRight := SplitAtSentenceBoundary(text)
	if !strings.HasSuffix(gotLeft, ".") {
		t.Errorf("left half should end at sentence punctuation, got %q", gotLeft)
	}
	if strings.Contains(gotRight, ".") {
		t.Errorf("right half should carry no punctuation, got %q", gotRight)
	}
}

func TestSplitAtSentenceBoundary_MidpointFallback(t *testing.T) {
	text := strings.Repeat("x", 300)
	left, right := SplitAtSentenceBoundary(text)
	if len(left) != 150 || len(right) != 150 {
		t.Errorf("expected raw midpoint split, got %d/%d", len(left), len(right))
	}
}

func TestStripStops(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the quick brown fox", "quick brown fox"},
		{"The Quick Brown Fox", "Quick Brown Fox"},
		{"a an the of", ""},
		{"", ""},
		{"Kubernetes is a container orchestrator", "Kubernetes container orchestrator"},
	}
	for _, tt := range tests {
		if got := StripStops(tt.in); got != tt.want {
			t.Errorf("StripStops(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripStops_CollapsesWhitespace(t *testing.T) {
	got := StripStops("alpha   the    beta\n\ngamma")
	if strings.Contains(got, "  ") || strings.Contains(got, "\n") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
}

func TestIsStopWord(t *testing.T) {
	if !IsStopWord("the") || !IsStopWord("The") {
		t.Error("expected 'the' to be a stop word in any casing")
	}
	if IsStopWord("kubernetes") {
		t.Error("'kubernetes' should not be a stop word")
	}
}
