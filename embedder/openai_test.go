package embedder

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCounter struct{}

func (wordCounter) TokenLen(text string) int {
	return len(strings.Fields(text))
}

// fakeClient rejects any input above maxWords with the API's
// context-length error and otherwise returns a fixed short vector. Safe
// for the embedder's parallel bisection calls.
type fakeClient struct {
	maxWords int

	mu    sync.Mutex
	calls [][]string
}

func (f *fakeClient) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	req := conv.Convert()
	texts := req.Input.([]string)
	f.mu.Lock()
	f.calls = append(f.calls, texts)
	f.mu.Unlock()

	total := 0
	for _, t := range texts {
		total += len(strings.Fields(t))
	}
	if total > f.maxWords {
		return openai.EmbeddingResponse{}, &openai.APIError{
			Code:           "context_length_exceeded",
			Message:        "This model's maximum context length is exceeded",
			HTTPStatusCode: 400,
		}
	}

	resp := openai.EmbeddingResponse{}
	for range texts {
		resp.Data = append(resp.Data, openai.Embedding{Embedding: []float32{1, 2}})
	}
	return resp, nil
}

func testEmbedder(client embeddingClient, dim int) *OpenAI {
	return &OpenAI{
		client:  client,
		model:   openai.EmbeddingModel(DefaultModel),
		dim:     dim,
		counter: wordCounter{},
		log:     zerolog.Nop(),
	}
}

func TestEmbed_PadsToDimension(t *testing.T) {
	e := testEmbedder(&fakeClient{maxWords: 100}, 4)

	vec, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 0, 0}, vec)
}

func TestEmbed_EmptyShortCircuits(t *testing.T) {
	client := &fakeClient{maxWords: 100}
	e := testEmbedder(client, 4)

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 4), vec)
	assert.Empty(t, client.calls, "no API call expected for empty input")
}

func TestEmbed_BisectsOnContextOverflow(t *testing.T) {
	client := &fakeClient{maxWords: 10}
	e := testEmbedder(client, 4)

	// 16 words across four sentences: the first call overflows, both
	// halves fit.
	text := strings.Repeat("alpha beta gamma delta. ", 4)
	vec, err := e.Embed(context.Background(), strings.TrimSpace(text))
	require.NoError(t, err)
	// Averaging identical half-vectors reproduces them.
	assert.Equal(t, []float32{1, 2, 0, 0}, vec)
	assert.GreaterOrEqual(t, len(client.calls), 3, "expected the overflowing call plus both halves")
}

func TestEmbedBatch_GroupsUnderBudget(t *testing.T) {
	client := &fakeClient{maxWords: batchBudget}
	e := testEmbedder(client, 4)

	texts := []string{"one two", "three four", "five six"}
	vectors, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		assert.Equal(t, []float32{1, 2, 0, 0}, v)
	}
	assert.Len(t, client.calls, 1, "small inputs should share one batch")
}

func TestEmbedBatch_PreservesOrderWithEmptyInputs(t *testing.T) {
	e := testEmbedder(&fakeClient{maxWords: batchBudget}, 4)

	vectors, err := e.EmbedBatch(context.Background(), []string{"one", "", "two"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, make([]float32, 4), vectors[1])
	assert.Equal(t, []float32{1, 2, 0, 0}, vectors[0])
	assert.Equal(t, []float32{1, 2, 0, 0}, vectors[2])
}

func TestIsContextLengthErr(t *testing.T) {
	assert.False(t, isContextLengthErr(nil))
	assert.False(t, isContextLengthErr(assert.AnError))
	assert.True(t, isContextLengthErr(&openai.APIError{Code: "context_length_exceeded"}))
	assert.True(t, isContextLengthErr(&openai.APIError{
		HTTPStatusCode: 400,
		Message:        "This model's maximum context length is 8192 tokens",
	}))
	assert.False(t, isContextLengthErr(&openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}))
}

func TestPadToDim(t *testing.T) {
	assert.Equal(t, []float32{1, 2, 0}, padToDim([]float32{1, 2}, 3))
	assert.Equal(t, []float32{1, 2}, padToDim([]float32{1, 2, 3}, 2))
	assert.Equal(t, []float32{1, 2}, padToDim([]float32{1, 2}, 2))
}
