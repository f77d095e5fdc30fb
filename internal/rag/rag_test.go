package rag

import (
	"context"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/models"
	"pdf-rag-chat/internal/store/chromem"
)

// fakeEmbedder maps text to a deterministic 4-dim character-count vector.
type fakeEmbedder struct {
	calls       int
	unreachable bool
}

func (f *fakeEmbedder) embed(text string) []float32 {
	var length, vowels, spaces, other float32
	for _, r := range text {
		length++
		switch {
		case strings.ContainsRune("aeiouAEIOU", r):
			vowels++
		case r == ' ':
			spaces++
		default:
			other++
		}
	}
	return []float32{length, vowels, spaces, other}
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.unreachable {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	}
	return f.embed(text), nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// fakeModel records the prompt it was given and returns a canned reply.
type fakeModel struct {
	lastPrompt string
	reply      string
	noChoices  bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.lastPrompt = text.Text
			}
		}
	}
	if f.noChoices {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.lastPrompt = prompt
	return f.reply, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 100,
			TopK:         3,
		},
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *fakeEmbedder, *fakeModel) {
	t.Helper()
	st, err := chromem.NewStore(config.ChromemConfig{Path: t.TempDir(), Collection: "test"})
	require.NoError(t, err)
	embedder := &fakeEmbedder{}
	model := &fakeModel{reply: "Paris."}
	return New(st, embedder, model, testConfig()), embedder, model
}

func TestIngestAndQuery_EndToEnd(t *testing.T) {
	ctx := context.Background()
	pipeline, _, model := newTestPipeline(t)

	pages := []models.Page{{
		Content:    "Paris is the capital of France.",
		Source:     "facts.pdf",
		PageNumber: 1,
	}}
	require.NoError(t, pipeline.Ingest(ctx, pages, false))

	answer, err := pipeline.Query(ctx, "What is the capital of France?")
	require.NoError(t, err)

	// one chunk, k=3: under-supply returns what is there, no error
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "facts.pdf", answer.Sources[0].Source)
	assert.Equal(t, 1, answer.Sources[0].PageNumber)
	assert.Equal(t, "Paris.", answer.Content)
	assert.Contains(t, model.lastPrompt, "Paris is the capital of France.")
	assert.Contains(t, model.lastPrompt, "What is the capital of France?")
}

func TestIngest_ReusesPopulatedStore(t *testing.T) {
	ctx := context.Background()
	pipeline, embedder, _ := newTestPipeline(t)

	pages := []models.Page{{Content: "Some document text.", Source: "a.txt", PageNumber: 1}}
	require.NoError(t, pipeline.Ingest(ctx, pages, false))
	callsAfterFirst := embedder.calls

	// second ingest is a no-op: the store already has data
	require.NoError(t, pipeline.Ingest(ctx, pages, false))
	assert.Equal(t, callsAfterFirst, embedder.calls)

	// rebuild forces a fresh embed + upsert
	require.NoError(t, pipeline.Ingest(ctx, pages, true))
	assert.Greater(t, embedder.calls, callsAfterFirst)
}

func TestIngest_NoPagesNoChunks(t *testing.T) {
	ctx := context.Background()
	pipeline, _, _ := newTestPipeline(t)

	err := pipeline.Ingest(ctx, nil, false)
	require.Error(t, err)
	assert.Equal(t, KindNoDocuments, KindOf(err))
}

func TestQuery_ProviderUnreachableKeepsPipelineUsable(t *testing.T) {
	ctx := context.Background()
	pipeline, embedder, _ := newTestPipeline(t)

	pages := []models.Page{{Content: "Paris is the capital of France.", Source: "facts.pdf", PageNumber: 1}}
	require.NoError(t, pipeline.Ingest(ctx, pages, false))

	embedder.unreachable = true
	_, err := pipeline.Query(ctx, "What is the capital of France?")
	require.Error(t, err)
	assert.Equal(t, KindProviderUnreachable, KindOf(err))

	// the next question must still work
	embedder.unreachable = false
	answer, err := pipeline.Query(ctx, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer.Content)
}

func TestQuery_EmptyStoreUsesNoContextMarker(t *testing.T) {
	ctx := context.Background()
	pipeline, _, model := newTestPipeline(t)

	answer, err := pipeline.Query(ctx, "Anything at all?")
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, model.lastPrompt, models.NoContext)
}

func TestQuery_EmptyChoicesIsBadResponse(t *testing.T) {
	ctx := context.Background()
	pipeline, _, model := newTestPipeline(t)
	model.noChoices = true

	_, err := pipeline.Query(ctx, "Anything?")
	require.Error(t, err)
	assert.Equal(t, KindBadResponse, KindOf(err))
}

func TestBuildPrompt_RankOrder(t *testing.T) {
	results := []models.SearchResult{
		{Chunk: models.Chunk{Content: "first chunk"}, Similarity: 0.9},
		{Chunk: models.Chunk{Content: "second chunk"}, Similarity: 0.5},
	}

	prompt := BuildPrompt(results, "question?")

	firstIdx := strings.Index(prompt, "first chunk")
	secondIdx := strings.Index(prompt, "second chunk")
	require.GreaterOrEqual(t, firstIdx, 0)
	require.GreaterOrEqual(t, secondIdx, 0)
	assert.Less(t, firstIdx, secondIdx)
	assert.Contains(t, prompt, "question?")
}
