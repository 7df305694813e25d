// Package tokenizer provides exact token counting under the embedding
// model's encoding, context-limit splitting, and stop-word stripping.
package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding used by the embedding model family.
const encodingName = "cl100k_base"

// minSentenceOffset is the earliest character position a sentence boundary
// must lie past to be used as a split point; earlier boundaries would
// produce a degenerate left half.
const minSentenceOffset = 100

// Counter computes exact token counts with a per-run cache keyed by the
// exact input string. Callers use these counts to decide whether inputs fit
// a hard context limit, so counts are never estimated.
type Counter struct {
	enc *tiktoken.Tiktoken

	mu    sync.RWMutex
	cache map[string]int
}

// NewCounter loads the token encoding and returns a ready Counter.
func NewCounter() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Counter{
		enc:   enc,
		cache: make(map[string]int),
	}, nil
}

// TokenLen returns the exact encoded token count of text.
func (c *Counter) TokenLen(text string) int {
	c.mu.RLock()
	n, ok := c.cache[text]
	c.mu.RUnlock()
	if ok {
		return n
	}

	n = len(c.enc.Encode(text, nil, nil))

	c.mu.Lock()
	c.cache[text] = n
	c.mu.Unlock()
	return n
}

// SplitToFit bisects text until every piece encodes to at most ctx tokens.
// The split point is the latest sentence-terminating punctuation before the
// character midpoint, falling back to the raw midpoint when no boundary
// lies past the first 100 characters.
func (c *Counter) SplitToFit(text string, ctx int) []string {
	if c.TokenLen(text) <= ctx {
		return []string{text}
	}

	left, right := SplitAtSentenceBoundary(text)
	if left == "" || right == "" {
		// Cannot split further; emit as-is and let the caller guard.
		return []string{text}
	}

	out := c.SplitToFit(left, ctx)
	return append(out, c.SplitToFit(right, ctx)...)
}

// SplitAtSentenceBoundary splits text into two halves at the latest
// sentence-terminating punctuation before the character midpoint, or at the
// raw midpoint when no usable boundary exists. Both halves are trimmed.
func SplitAtSentenceBoundary(text string) (string, string) {
	mid := len(text) / 2
	if mid == 0 {
		return text, ""
	}

	split := strings.LastIndexAny(text[:mid], ".!?")
	if split > minSentenceOffset {
		split++ // keep the punctuation on the left half
	} else {
		split = mid
		// Never cut a UTF-8 sequence in half.
		for split > 0 && !utf8.RuneStart(text[split]) {
			split--
		}
	}

	return strings.TrimSpace(text[:split]), strings.TrimSpace(text[split:])
}

var (
	wordRe       = regexp.MustCompile(`[A-Za-z0-9']+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// StripStops removes English stop-words from text, preserving the original
// casing of the remaining words and collapsing runs of whitespace.
func StripStops(text string) string {
	stripped := wordRe.ReplaceAllStringFunc(text, func(word string) string {
		if IsStopWord(word) {
			return ""
		}
		return word
	})
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(stripped, " "))
}
