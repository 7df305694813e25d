package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/types"
)

// DefaultRakeThreshold drops candidate phrases whose degree/frequency score
// falls below it.
const DefaultRakeThreshold = 2.0

var (
	// Punctuation with no phrase-boundary meaning is blanked out before
	// phrase splitting; sentence punctuation survives as delimiters.
	rakeNoiseRe    = regexp.MustCompile("[\"'`()\\[\\]{}<>/\\\\|@#$%^&*_+=~‘’“”-]")
	rakeBoundaryRe = regexp.MustCompile(`[.!?,;:]`)
	rakeSpaceRe    = regexp.MustCompile(`\s+`)
)

// RakeScores extracts candidate phrases bounded by stop-words and sentence
// punctuation, scores each phrase as the sum of its words' degree/frequency
// ratios, and returns the topN phrases with score >= threshold.
func RakeScores(text string, topN int, threshold float64) []types.ScoredTerm {
	phrases := rakePhrases(text)
	if len(phrases) == 0 {
		return nil
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, phrase := range phrases {
		words := strings.Fields(phrase)
		for _, w := range words {
			freq[w]++
			degree[w] += float64(len(words))
		}
	}

	seen := make(map[string]bool, len(phrases))
	var scored []types.ScoredTerm
	for _, phrase := range phrases {
		if seen[phrase] {
			continue
		}
		seen[phrase] = true

		var score float64
		for _, w := range strings.Fields(phrase) {
			score += degree[w] / freq[w]
		}
		if score < threshold {
			continue
		}
		scored = append(scored, types.ScoredTerm{Term: phrase, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Term < scored[j].Term
	})
	if topN >= 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// rakePhrases normalizes text and splits it into candidate phrases using
// the union of stop-words and sentence punctuation as delimiters.
func rakePhrases(text string) []string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(text)
	text = rakeNoiseRe.ReplaceAllString(text, " ")
	text = rakeBoundaryRe.ReplaceAllString(text, " \x00 ")
	text = rakeSpaceRe.ReplaceAllString(text, " ")

	var phrases []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			phrases = append(phrases, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, word := range strings.Fields(text) {
		if word == "\x00" || tokenizer.IsStopWord(word) {
			flush()
			continue
		}
		current = append(current, word)
	}
	flush()
	return phrases
}
