package store

import (
	"context"

	"pdf-rag-chat/internal/models"
)

// Store persists embedded chunks and answers nearest-neighbor queries. The
// pipeline's whole contract with a backend: open-or-create, insert, top-k.
type Store interface {
	// Upsert inserts a batch of embedded chunks.
	Upsert(ctx context.Context, records []models.ChunkEmbedding) error
	// Search returns up to k chunks nearest to the query vector, best
	// first. Fewer than k stored chunks is not an error.
	Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error)
	// Count reports how many chunks the store currently holds.
	Count(ctx context.Context) (int, error)
	// Reset drops all stored chunks.
	Reset(ctx context.Context) error
	Close() error
}
