package keywords

import (
	"strings"
	"testing"

	"github.com/readloom/readloom/tokenizer"
)

func TestRakeScores_PhrasesBoundedByStopsAndPunctuation(t *testing.T) {
	text := "Semantic chunking is powerful. Semantic chunking is adaptive."
	terms := RakeScores(text, 10, 0)

	if len(terms) == 0 {
		t.Fatal("expected candidate phrases")
	}
	var phrases []string
	for _, term := range terms {
		phrases = append(phrases, term.Term)
		for _, w := range strings.Fields(term.Term) {
			if tokenizer.IsStopWord(w) {
				t.Errorf("stop word %q inside phrase %q", w, term.Term)
			}
		}
	}
	found := false
	for _, p := range phrases {
		if p == "semantic chunking" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected phrase %q in %v", "semantic chunking", phrases)
	}
}

func TestRakeScores_MultiWordPhrasesOutscoreSingles(t *testing.T) {
	text := "distributed consensus protocols. distributed consensus protocols. logging."
	terms := RakeScores(text, 10, 0)
	if len(terms) == 0 {
		t.Fatal("expected phrases")
	}
	if terms[0].Term != "distributed consensus protocols" {
		t.Errorf("top phrase = %q, want the repeated multi-word phrase", terms[0].Term)
	}
}

func TestRakeScores_ThresholdDropsWeakPhrases(t *testing.T) {
	// A lone single word has degree/frequency = 1, below the default
	// threshold of 2.
	terms := RakeScores("logging", 10, DefaultRakeThreshold)
	if len(terms) != 0 {
		t.Errorf("expected no phrases above threshold, got %v", terms)
	}
}

func TestRakeScores_ScoresNonIncreasing(t *testing.T) {
	text := "vector database indexes embeddings. query rewriting improves recall. cache."
	terms := RakeScores(text, 10, 0)
	for i := 1; i < len(terms); i++ {
		if terms[i].Score > terms[i-1].Score {
			t.Fatalf("scores not non-increasing: %v", terms)
		}
	}
}

func TestRakeScores_TopNBound(t *testing.T) {
	text := "alpha one. beta two. gamma three. delta four. epsilon five."
	terms := RakeScores(text, 2, 0)
	if len(terms) > 2 {
		t.Errorf("got %d phrases, want at most 2", len(terms))
	}
}
