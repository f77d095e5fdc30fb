package chromem

import (
	"context"
	"testing"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(config.ChromemConfig{Path: t.TempDir(), Collection: "test"})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func record(content string, page, idx int, vec []float32) models.ChunkEmbedding {
	return models.ChunkEmbedding{
		Chunk: models.Chunk{
			Content:    content,
			Source:     "doc.pdf",
			PageNumber: page,
			ChunkIndex: idx,
		},
		Embedding: vec,
	}
}

func TestUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Upsert(ctx, []models.ChunkEmbedding{
		record("chunk about cities", 1, 0, []float32{1, 0}),
		record("chunk about rivers", 2, 0, []float32{0, 1}),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(ctx, []float32{0.9, 0.1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "chunk about cities" {
		t.Fatalf("expected the cities chunk, got %q", results[0].Content)
	}
	if results[0].PageNumber != 1 || results[0].Source != "doc.pdf" {
		t.Fatalf("metadata lost in round trip: %+v", results[0].Chunk)
	}
}

func TestSearch_UnderSupply(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Upsert(ctx, []models.ChunkEmbedding{record("only chunk", 1, 0, []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}

	// k above the stored count must not error
	results, err := s.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	results, err := s.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestCountAndReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Upsert(ctx, []models.ChunkEmbedding{
		record("a", 1, 0, []float32{1, 0}),
		record("b", 1, 1, []float32{0, 1}),
	}); err != nil {
		t.Fatal(err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 chunks, got %d", count)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	count, err = s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected empty store after reset, got %d", count)
	}
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(config.ChromemConfig{Path: dir, Collection: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, []models.ChunkEmbedding{record("persisted", 1, 0, []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(config.ChromemConfig{Path: dir, Collection: "test"})
	if err != nil {
		t.Fatal(err)
	}
	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 chunk after reopen, got %d", count)
	}
}
