package embedder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/readloom/readloom/tokenizer"
)

const (
	// DefaultModel is the embedding model identifier.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension is the configured output dimension; native model
	// vectors shorter than this are zero-padded.
	DefaultDimension = 1536

	// contextLimit is the model's hard token limit per input.
	contextLimit = 8192

	// batchBudget bounds the summed token count of one batch request,
	// leaving headroom under the context limit.
	batchBudget = contextLimit - 32
)

// embeddingClient is the slice of the OpenAI client the embedder uses.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAI embeds texts through the OpenAI embeddings API. Inputs that
// overrun the model context are bisected at sentence boundaries, the halves
// embedded in parallel, and their component-wise average returned.
type OpenAI struct {
	client  embeddingClient
	model   openai.EmbeddingModel
	dim     int
	counter TokenCounter
	log     zerolog.Logger
}

// NewOpenAI builds an embedder against the OpenAI API.
func NewOpenAI(apiKey, model string, dim int, counter TokenCounter, log zerolog.Logger) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &OpenAI{
		client:  openai.NewClient(apiKey),
		model:   openai.EmbeddingModel(model),
		dim:     dim,
		counter: counter,
		log:     log.With().Str("component", "embedder").Logger(),
	}
}

// Dimension implements Embedder.
func (e *OpenAI) Dimension() int {
	return e.dim
}

// Embed implements Embedder.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dim), nil
	}
	return e.safeEmbed(ctx, text)
}

// EmbedBatch implements Embedder. Inputs are grouped into batches whose
// summed token count stays within the batch budget; any single input above
// the budget is embedded through the recursive path instead of batched.
func (e *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	var batch []string
	var batchIdx []int
	batchTokens := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		vectors, err := e.request(ctx, batch)
		if isContextLengthErr(err) {
			// The summed budget was not enough; fall back per item.
			e.log.Debug().Int("batch", len(batch)).Msg("batch overran context, retrying per item")
			vectors = make([][]float32, len(batch))
			for i, text := range batch {
				vectors[i], err = e.safeEmbed(ctx, text)
				if err != nil {
					return err
				}
			}
		} else if err != nil {
			return err
		}
		for i, idx := range batchIdx {
			results[idx] = vectors[i]
		}
		batch = batch[:0]
		batchIdx = batchIdx[:0]
		batchTokens = 0
		return nil
	}

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = make([]float32, e.dim)
			continue
		}
		tokens := e.counter.TokenLen(text)
		if tokens > batchBudget {
			if err := flush(); err != nil {
				return nil, err
			}
			vec, err := e.safeEmbed(ctx, text)
			if err != nil {
				return nil, err
			}
			results[i] = vec
			continue
		}
		if batchTokens+tokens > batchBudget {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchIdx = append(batchIdx, i)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return results, nil
}

// safeEmbed embeds text, recursing on context-length rejections: split at
// the latest sentence boundary before the character midpoint, embed both
// halves in parallel, and average the half-vectors component-wise.
func (e *OpenAI) safeEmbed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.request(ctx, []string{text})
	if err == nil {
		return vectors[0], nil
	}
	if !isContextLengthErr(err) {
		return nil, err
	}

	left, right := tokenizer.SplitAtSentenceBoundary(text)
	if left == "" || right == "" {
		return nil, fmt.Errorf("input overruns context and cannot be split further: %w", err)
	}
	e.log.Debug().Int("chars", len(text)).Msg("context overflow, bisecting input")

	var leftVec, rightVec []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leftVec, err = e.safeEmbed(gctx, left)
		return err
	})
	g.Go(func() error {
		var err error
		rightVec, err = e.safeEmbed(gctx, right)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := make([]float32, e.dim)
	for i := range avg {
		avg[i] = (leftVec[i] + rightVec[i]) / 2
	}
	return avg, nil
}

// request issues one embeddings call and zero-pads each vector to the
// configured dimension.
func (e *OpenAI) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      e.model,
		Dimensions: e.dim,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response carried %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = padToDim(d.Embedding, e.dim)
	}
	return vectors, nil
}

// padToDim right-pads vec with zeros up to dim.
func padToDim(vec []float32, dim int) []float32 {
	if len(vec) >= dim {
		return vec[:dim]
	}
	padded := make([]float32, dim)
	copy(padded, vec)
	return padded
}

// isContextLengthErr distinguishes the API's context-length rejection from
// other failures.
func isContextLengthErr(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "context_length_exceeded" {
			return true
		}
		return apiErr.HTTPStatusCode == 400 &&
			strings.Contains(apiErr.Message, "maximum context length")
	}
	return false
}
