package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"pdf-rag-chat/internal/chunker"
	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/embedding"
	"pdf-rag-chat/internal/llmservice"
	"pdf-rag-chat/internal/models"
	"pdf-rag-chat/internal/store"
)

// Pipeline wires chunking, embedding, the vector store, and the chat model
// into the two-phase ingest/query flow.
type Pipeline struct {
	store     store.Store
	embedder  embeddings.Embedder
	chatModel llms.Model
	chunker   *chunker.Chunker
	topK      int
}

func New(st store.Store, embedder embeddings.Embedder, chatModel llms.Model, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:     st,
		embedder:  embedder,
		chatModel: chatModel,
		chunker:   chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		topK:      cfg.RAG.TopK,
	}
}

// Ingest runs the one-shot ingestion phase. A store that already holds
// chunks is reused as-is unless rebuild forces a full re-ingest; there is
// no incremental merge. Any failure here aborts the run, since the query
// phase would have nothing to work with.
func (p *Pipeline) Ingest(ctx context.Context, pages []models.Page, rebuild bool) error {
	count, err := p.store.Count(ctx)
	if err != nil {
		return newError(KindStore, "counting stored chunks", err)
	}
	if count > 0 && !rebuild {
		log.Info().Int("chunks", count).Msg("Reusing existing vector store")
		return nil
	}
	if count > 0 {
		log.Info().Int("chunks", count).Msg("Rebuilding vector store")
		if err := p.store.Reset(ctx); err != nil {
			return newError(KindStore, "resetting store for rebuild", err)
		}
	}

	chunks := p.chunker.SplitPages(pages)
	if len(chunks) == 0 {
		return NewNoDocumentsError("loaded pages produced no chunks")
	}
	log.Info().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Chunked documents")

	records, err := embedding.EmbedChunks(ctx, p.embedder, chunks)
	if err != nil {
		return classifyProvider("embedding chunks", err)
	}
	if err := p.store.Upsert(ctx, records); err != nil {
		return newError(KindStore, "storing embedded chunks", err)
	}
	log.Info().Int("chunks", len(records)).Msg("Ingestion complete")
	return nil
}

// Query answers one question: embed it, retrieve the nearest chunks, and
// ask the chat model to answer from that context alone. Errors are
// query-level; the pipeline stays usable for the next question.
func (p *Pipeline) Query(ctx context.Context, question string) (*models.Answer, error) {
	vector, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, classifyProvider("embedding question", err)
	}

	results, err := p.store.Search(ctx, vector, p.topK)
	if err != nil {
		return nil, newError(KindStore, "searching store", err)
	}
	log.Debug().Int("retrieved", len(results)).Str("question", question).Msg("Retrieved context chunks")

	prompt := BuildPrompt(results, question)
	answer, err := llmservice.GenerateText(ctx, p.chatModel, prompt)
	if err != nil {
		return nil, classifyProvider("generating answer", err)
	}

	sources := make([]models.Provenance, len(results))
	for i, r := range results {
		sources[i] = models.Provenance{Source: r.Source, PageNumber: r.PageNumber}
	}
	return &models.Answer{Content: answer, Sources: sources}, nil
}

// BuildPrompt assembles the context-augmented prompt. Retrieved chunks are
// concatenated in similarity-rank order; zero results is a valid outcome
// and yields an explicit no-context marker rather than an error.
func BuildPrompt(results []models.SearchResult, question string) string {
	var context strings.Builder
	for i, r := range results {
		if i > 0 {
			context.WriteString("\n\n")
		}
		context.WriteString(r.Content)
	}
	ctxText := context.String()
	if ctxText == "" {
		ctxText = models.NoContext
	}
	return fmt.Sprintf(models.AnswerPromptTemplate, ctxText, question)
}
