// Package chromem backs the vector store with chromem-go, persisted to a
// local directory. This is the default backend: no server, the index lives
// next to the binary and survives restarts.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/models"
)

type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
}

// NewStore opens (or creates) the persistent database directory and the
// named collection inside it.
func NewStore(cfg config.ChromemConfig) (*Store, error) {
	db, err := chromemgo.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("chromem: open %s: %w", cfg.Path, err)
	}
	c, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: collection %s: %w", cfg.Collection, err)
	}
	return &Store{db: db, collection: c, name: cfg.Collection}, nil
}

func (s *Store) Upsert(ctx context.Context, records []models.ChunkEmbedding) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromemgo.Document, len(records))
	for i, r := range records {
		docs[i] = chromemgo.Document{
			ID:      fmt.Sprintf("%s-%d-%d", r.Source, r.PageNumber, r.ChunkIndex),
			Content: r.Content,
			Metadata: map[string]string{
				"source":      r.Source,
				"page_number": strconv.Itoa(r.PageNumber),
				"chunk_index": strconv.Itoa(r.ChunkIndex),
			},
			Embedding: r.Embedding,
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem: add %d documents: %w", len(docs), err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	// chromem rejects nResults above the document count
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := s.collection.QueryWithOptions(ctx, chromemgo.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	out := make([]models.SearchResult, len(results))
	for i, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page_number"])
		idx, _ := strconv.Atoi(r.Metadata["chunk_index"])
		out[i] = models.SearchResult{
			Chunk: models.Chunk{
				Content:    r.Content,
				Source:     r.Metadata["source"],
				PageNumber: page,
				ChunkIndex: idx,
			},
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("chromem: delete collection %s: %w", s.name, err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("chromem: recreate collection %s: %w", s.name, err)
	}
	s.collection = c
	return nil
}

func (s *Store) Close() error { return nil }
