// Package keywords scores document terms with a corpus-wide TF-IDF model
// and RAKE phrase extraction.
package keywords

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/types"
)

// ErrNotBuilt is returned by corpus queries issued before Build has run
// since the most recent document addition. This is a programmer error in
// the pipeline's phase ordering.
var ErrNotBuilt = errors.New("tf-idf corpus not built")

var (
	termRe    = regexp.MustCompile(`[a-z0-9]+`)
	numericRe = regexp.MustCompile(`^[0-9]+$`)
)

// Corpus is a process-lifetime TF-IDF model. It accumulates per-document
// term frequencies, then Build derives document frequencies. Queries fail
// with ErrNotBuilt until the model has been built since the last addition.
type Corpus struct {
	docs  map[string]map[string]int
	df    map[string]int
	total int
	built bool
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		docs: make(map[string]map[string]int),
	}
}

// AddDocument tokenizes text and records its raw term frequencies under id.
// Adding a document invalidates any previous Build.
func (c *Corpus) AddDocument(id, text string) {
	counts := make(map[string]int)
	for _, term := range Terms(text) {
		counts[term]++
	}
	c.docs[id] = counts
	c.built = false
}

// Build recomputes document frequencies over the current documents and
// transitions the corpus to the built state.
func (c *Corpus) Build() {
	c.df = make(map[string]int)
	for _, counts := range c.docs {
		for term := range counts {
			c.df[term]++
		}
	}
	c.total = len(c.docs)
	c.built = true
}

// Len returns the number of documents added so far.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// TfIdf returns the TF·IDF score of term within document id, where TF is
// the raw count and IDF is log(N/df).
func (c *Corpus) TfIdf(id, term string) (float64, error) {
	if !c.built {
		return 0, ErrNotBuilt
	}
	counts, ok := c.docs[id]
	if !ok {
		return 0, nil
	}
	tf := float64(counts[term])
	if tf == 0 {
		return 0, nil
	}
	df := c.df[term]
	if df == 0 || c.total == 0 {
		return 0, nil
	}
	return tf * math.Log(float64(c.total)/float64(df)), nil
}

// TopTerms returns up to n terms of document id sorted by descending
// TF·IDF score. Terms shorter than three characters or purely numeric are
// excluded.
func (c *Corpus) TopTerms(id string, n int) ([]types.ScoredTerm, error) {
	if !c.built {
		return nil, ErrNotBuilt
	}
	counts, ok := c.docs[id]
	if !ok {
		return nil, nil
	}

	scored := make([]types.ScoredTerm, 0, len(counts))
	for term := range counts {
		if len(term) < 3 || numericRe.MatchString(term) {
			continue
		}
		score, err := c.TfIdf(id, term)
		if err != nil {
			return nil, err
		}
		scored = append(scored, types.ScoredTerm{Term: term, Score: score})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Term < scored[j].Term
	})

	if n >= 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}

// Terms tokenizes text into lowercased alphanumeric word sequences of
// length >= 2 with stop-words removed.
func Terms(text string) []string {
	raw := termRe.FindAllString(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) < 2 || tokenizer.IsStopWord(t) {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}
