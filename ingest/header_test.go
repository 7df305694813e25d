package ingest

import (
	"strings"
	"testing"

	"github.com/readloom/readloom/types"
)

func TestBuildSuperHeader_Sections(t *testing.T) {
	doc := types.Document{
		ID:      "d1",
		Title:   "Kubernetes Operators",
		Author:  "Jane Doe",
		Summary: "A tour of the operator pattern.",
		Tags:    types.TagList{"kubernetes", "infra"},
	}
	kw := types.KeywordSet{
		Rake:  []types.ScoredTerm{{Term: "operator pattern", Score: 4}},
		TfIdf: []types.ScoredTerm{{Term: "reconcile", Score: 1.2}, {Term: "controller", Score: 0.8}},
	}

	header := BuildSuperHeader(doc, kw)

	want := []string{
		"Title: Kubernetes Operators",
		"Author: Jane Doe",
		"Tags: kubernetes, infra",
		"Summary: A tour of the operator pattern.",
		"RAKE Keywords: operator pattern",
		"TF-IDF Terms: reconcile, controller",
	}
	if header != strings.Join(want, "\n\n") {
		t.Errorf("unexpected header:\n%s", header)
	}
}

func TestBuildSuperHeader_OptionalSectionsOmitted(t *testing.T) {
	header := BuildSuperHeader(types.Document{Title: "T", Author: "A"}, types.KeywordSet{})
	if strings.Contains(header, "Tags:") {
		t.Error("empty tags should be omitted")
	}
	if strings.Contains(header, "Summary:") {
		t.Error("empty summary should be omitted")
	}
}

func TestBuildSuperHeader_SectionBounds(t *testing.T) {
	doc := types.Document{
		Title:   strings.Repeat("t", 300),
		Author:  strings.Repeat("a", 300),
		Summary: strings.Repeat("s", 2000),
		Tags:    types.TagList{strings.Repeat("g", 300)},
	}
	header := BuildSuperHeader(doc, types.KeywordSet{})

	if len(header) > maxHeaderLen {
		t.Errorf("header length %d exceeds %d", len(header), maxHeaderLen)
	}
	for _, line := range strings.Split(header, "\n\n") {
		switch {
		case strings.HasPrefix(line, "Title: "):
			if n := len(strings.TrimPrefix(line, "Title: ")); n > maxTitleLen {
				t.Errorf("title section %d chars, want <= %d", n, maxTitleLen)
			}
		case strings.HasPrefix(line, "Summary: "):
			if n := len(strings.TrimPrefix(line, "Summary: ")); n > maxSummaryLen {
				t.Errorf("summary section %d chars, want <= %d", n, maxSummaryLen)
			}
		}
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncate(s, 5)
	if !strings.HasPrefix(s, got) {
		t.Errorf("truncate produced a non-prefix: %q", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Error("truncate cut a UTF-8 sequence")
		}
	}
}
