package rewriter

import (
	"context"
	"strings"
	"testing"
)

func TestParseExpansion_PlainJSON(t *testing.T) {
	completion := `{"Optimized Query": "kubernetes operator pattern for automated cluster management",
		"Related Topics": ["controllers", "reconciliation"],
		"Tags": ["kubernetes", "operators"]}`

	exp, ok := parseExpansion(completion)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if exp.OptimizedQuery == "" || len(exp.RelatedTopics) != 2 || len(exp.Tags) != 2 {
		t.Errorf("unexpected expansion: %+v", exp)
	}
}

func TestParseExpansion_ProseAroundObject(t *testing.T) {
	completion := "Sure! Here is the expansion you asked for:\n\n" +
		`{"Optimized Query": "vector database indexing", "Related Topics": [], "Tags": []}` +
		"\n\nLet me know if you need anything else."

	exp, ok := parseExpansion(completion)
	if !ok {
		t.Fatal("expected parse despite surrounding prose")
	}
	if exp.OptimizedQuery != "vector database indexing" {
		t.Errorf("OptimizedQuery = %q", exp.OptimizedQuery)
	}
}

func TestParseExpansion_CurlyQuotes(t *testing.T) {
	completion := `{“Optimized Query”: “semantic search”, “Related Topics”: [“embeddings”], “Tags”: []}`

	exp, ok := parseExpansion(completion)
	if !ok {
		t.Fatal("expected parse with curly quotes normalized")
	}
	if exp.OptimizedQuery != "semantic search" {
		t.Errorf("OptimizedQuery = %q", exp.OptimizedQuery)
	}
}

func TestParseExpansion_Failures(t *testing.T) {
	cases := []string{
		"",
		"no braces at all",
		"{not json}",
		`{"Related Topics": ["missing optimized query"]}`,
	}
	for _, completion := range cases {
		if _, ok := parseExpansion(completion); ok {
			t.Errorf("expected failure for %q", completion)
		}
	}
}

func TestExpansion_Render(t *testing.T) {
	exp := expansion{
		OptimizedQuery: "restated query",
		RelatedTopics:  []string{"topic one", "topic two"},
		Tags:           []string{"tag"},
	}
	got := exp.render()

	sections := strings.Split(got, "\n\n")
	if len(sections) != 3 {
		t.Fatalf("expected 3 blank-line separated sections, got %d: %q", len(sections), got)
	}
	if !strings.HasPrefix(sections[0], "Optimized Query: ") {
		t.Errorf("first section = %q", sections[0])
	}
	if !strings.Contains(sections[1], "topic one, topic two") {
		t.Errorf("second section = %q", sections[1])
	}
}

func TestExpansion_RenderOmitsEmptyLists(t *testing.T) {
	got := expansion{OptimizedQuery: "q"}.render()
	if got != "Optimized Query: q" {
		t.Errorf("render = %q", got)
	}
}

func TestNoop(t *testing.T) {
	if got := (Noop{}).Rewrite(context.Background(), "raw query"); got != "raw query" {
		t.Errorf("Noop changed the query: %q", got)
	}
}
