package keywords

import (
	"math"
	"strings"

	"github.com/readloom/readloom/types"
)

const (
	rakeTopN  = 10
	tfidfTopN = 10

	// boostBase scales a term's normalized weight into a repetition count;
	// boostCap bounds it.
	boostBase = 3.0
	boostCap  = 5
)

// ExtractKeywords composes RAKE and TF-IDF extraction for a document that
// was added to the corpus before Build. The returned set also carries a
// boosted text in which each top term recurs proportionally to its weight,
// for sparse-vector enhancement of the document header.
func ExtractKeywords(c *Corpus, id, text string) (types.KeywordSet, error) {
	tfidfTerms, err := c.TopTerms(id, tfidfTopN)
	if err != nil {
		return types.KeywordSet{}, err
	}
	rakeTerms := RakeScores(text, rakeTopN, DefaultRakeThreshold)

	return types.KeywordSet{
		Rake:        rakeTerms,
		TfIdf:       tfidfTerms,
		BoostedText: boostedText(rakeTerms, tfidfTerms),
	}, nil
}

// boostedText repeats each term ceil(boostBase * weight/maxWeight) times,
// capped at boostCap, across both keyword lists.
func boostedText(lists ...[]types.ScoredTerm) string {
	var parts []string
	for _, terms := range lists {
		if len(terms) == 0 {
			continue
		}
		max := terms[0].Score
		for _, t := range terms {
			if t.Score > max {
				max = t.Score
			}
		}
		if max <= 0 {
			continue
		}
		for _, t := range terms {
			repeat := int(math.Ceil(boostBase * t.Score / max))
			if repeat > boostCap {
				repeat = boostCap
			}
			for i := 0; i < repeat; i++ {
				parts = append(parts, t.Term)
			}
		}
	}
	return strings.Join(parts, " ")
}
