// Package chunker splits normalized document text into token-bounded
// fragments, deciding split points with cosine similarity over sliding
// windows of pre-embedded paragraph groups.
package chunker

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/readloom/readloom/embedder"
)

// Config bounds and tunes the chunker.
type Config struct {
	// MinTokens is the smallest chunk the walker will voluntarily close.
	MinTokens int `yaml:"min_tokens"`
	// MaxTokens bounds every chunk except single sentences with no
	// internal sentence boundary, which are emitted intact.
	MaxTokens int `yaml:"max_tokens"`
	// WindowSize is the number of merged paragraphs per similarity window.
	WindowSize int `yaml:"window_size"`
	// Threshold is the cosine similarity below which adjacent windows are
	// considered topically distinct and the chunk is closed.
	Threshold float64 `yaml:"threshold"`
	// SingleLimit caps any single merged paragraph; above it, paragraphs
	// are sentence-split before merging. Defaults to the embedding context
	// limit minus headroom.
	SingleLimit int `yaml:"single_limit"`
}

// DefaultConfig returns the standard chunking bounds.
func DefaultConfig() Config {
	return Config{
		MinTokens:   300,
		MaxTokens:   800,
		WindowSize:  1,
		Threshold:   0.75,
		SingleLimit: 8192 - 1000,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MinTokens <= 0 || c.MaxTokens <= 0 {
		return fmt.Errorf("min_tokens and max_tokens must be positive")
	}
	if c.MinTokens > c.MaxTokens {
		return fmt.Errorf("min_tokens must not exceed max_tokens")
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive")
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be a cosine similarity in [-1, 1]")
	}
	if c.SingleLimit <= c.MaxTokens {
		return fmt.Errorf("single_limit must exceed max_tokens")
	}
	return nil
}

// TokenCounter reports exact token counts.
type TokenCounter interface {
	TokenLen(text string) int
}

// Chunker performs semantic chunking of normalized text.
type Chunker struct {
	cfg     Config
	emb     embedder.Embedder
	counter TokenCounter
	log     zerolog.Logger
}

// New builds a Chunker.
func New(cfg Config, emb embedder.Embedder, counter TokenCounter, log zerolog.Logger) *Chunker {
	return &Chunker{
		cfg:     cfg,
		emb:     emb,
		counter: counter,
		log:     log.With().Str("component", "chunker").Logger(),
	}
}

// windowPair holds the pre-embedded sliding windows meeting at one
// paragraph boundary.
type windowPair struct {
	nextText string
	cur      []float32
	next     []float32
}

// Chunk splits text into fragments whose token length lies within the
// configured bounds. Paragraph separators are preserved between merged
// paragraphs. Single sentences with no internal boundary may exceed
// MaxTokens and are emitted intact.
func (c *Chunker) Chunk(ctx context.Context, text string) ([]string, error) {
	merged := c.mergeParagraphs(splitParagraphs(text))
	if len(merged) == 0 {
		return nil, nil
	}

	pairs, err := c.embedWindows(ctx, merged)
	if err != nil {
		return nil, err
	}

	var chunks []string
	var buf []string
	bufTokens := 0
	flush := func() {
		if len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, "\n\n"))
			buf = nil
			bufTokens = 0
		}
	}

	for i, para := range merged {
		paraTokens := c.counter.TokenLen(para)
		if paraTokens > c.cfg.MaxTokens {
			flush()
			chunks = append(chunks, c.splitOversize(para)...)
			continue
		}

		// Never let an append carry the buffer past MaxTokens; close the
		// current chunk first.
		if bufTokens > 0 && bufTokens+paraTokens > c.cfg.MaxTokens {
			flush()
		}
		buf = append(buf, para)
		bufTokens = c.counter.TokenLen(strings.Join(buf, "\n\n"))

		last := i == len(merged)-1
		if bufTokens < c.cfg.MinTokens && !last {
			continue
		}
		if bufTokens > c.cfg.MaxTokens {
			flush()
			continue
		}
		if last {
			continue
		}

		pair, ok := pairs[i]
		if !ok {
			continue
		}
		if bufTokens+c.counter.TokenLen(pair.nextText) > c.cfg.MaxTokens {
			flush()
			continue
		}
		if cosineSimilarity(pair.cur, pair.next) < c.cfg.Threshold {
			flush()
		}
	}
	flush()

	c.log.Debug().Int("paragraphs", len(merged)).Int("chunks", len(chunks)).Msg("chunked document")
	return chunks, nil
}

// mergeParagraphs greedily joins consecutive paragraphs while the merge
// stays within min(MaxTokens, SingleLimit). Paragraphs above SingleLimit
// are sentence-split into the work queue first.
func (c *Chunker) mergeParagraphs(paragraphs []string) []string {
	limit := c.cfg.MaxTokens
	if c.cfg.SingleLimit < limit {
		limit = c.cfg.SingleLimit
	}

	var queue []string
	for _, p := range paragraphs {
		if c.counter.TokenLen(p) > c.cfg.SingleLimit {
			queue = append(queue, c.splitOversize(p)...)
			continue
		}
		queue = append(queue, p)
	}

	var merged []string
	current := ""
	for _, p := range queue {
		if current == "" {
			current = p
			continue
		}
		joined := current + "\n\n" + p
		if c.counter.TokenLen(joined) <= limit {
			current = joined
			continue
		}
		merged = append(merged, current)
		current = p
	}
	if current != "" {
		merged = append(merged, current)
	}
	return merged
}

// embedWindows computes one embedding per unique window text and returns
// the window pair meeting at each eligible paragraph boundary i
// (the window ending at i against the window starting at i+1). Boundaries
// where either window overruns MaxTokens carry no pair.
func (c *Chunker) embedWindows(ctx context.Context, merged []string) (map[int]windowPair, error) {
	type boundary struct {
		cur, next string
	}
	boundaries := make(map[int]boundary)
	unique := make(map[string]int)
	var texts []string

	intern := func(text string) {
		if _, ok := unique[text]; !ok {
			unique[text] = len(texts)
			texts = append(texts, text)
		}
	}

	for i := 0; i < len(merged)-1; i++ {
		lo := i - c.cfg.WindowSize + 1
		if lo < 0 {
			lo = 0
		}
		hi := i + 1 + c.cfg.WindowSize
		if hi > len(merged) {
			hi = len(merged)
		}
		cur := strings.Join(merged[lo:i+1], "\n\n")
		next := strings.Join(merged[i+1:hi], "\n\n")
		if c.counter.TokenLen(cur) > c.cfg.MaxTokens || c.counter.TokenLen(next) > c.cfg.MaxTokens {
			continue
		}
		boundaries[i] = boundary{cur: cur, next: next}
		intern(cur)
		intern(next)
	}
	if len(boundaries) == 0 {
		return nil, nil
	}

	vectors, err := c.emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed similarity windows: %w", err)
	}

	pairs := make(map[int]windowPair, len(boundaries))
	for i, b := range boundaries {
		pairs[i] = windowPair{
			nextText: b.next,
			cur:      vectors[unique[b.cur]],
			next:     vectors[unique[b.next]],
		}
	}
	return pairs, nil
}

// splitOversize sentence-splits a paragraph and greedily packs sentences
// into pieces within MaxTokens. A single sentence above the bound is
// emitted intact.
func (c *Chunker) splitOversize(para string) []string {
	sentences := splitSentences(para)

	var pieces []string
	current := ""
	for _, s := range sentences {
		if current == "" {
			current = s
			continue
		}
		joined := current + " " + s
		if c.counter.TokenLen(joined) <= c.cfg.MaxTokens {
			current = joined
			continue
		}
		pieces = append(pieces, current)
		current = s
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

var sentenceEndRe = regexp.MustCompile(`([.!?]+)\s+`)

// splitSentences splits text after runs of sentence-terminating
// punctuation followed by whitespace.
func splitSentences(text string) []string {
	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	var sentences []string
	for _, s := range strings.Split(marked, "\x00") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// splitParagraphs splits normalized text on blank lines.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
