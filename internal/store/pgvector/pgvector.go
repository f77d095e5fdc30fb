// Package pgvector backs the vector store with Postgres and the pgvector
// extension, through bun.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-rag-chat/internal/config"
	"pdf-rag-chat/internal/models"
)

type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Content       string `bun:"content,notnull"`
	Embedding     string `bun:"embedding,notnull,type:vector"`
	Source        string `bun:"source,notnull"`
	PageNumber    int    `bun:"page_number,notnull"`
	ChunkIndex    int    `bun:"chunk_index,notnull"`

	Distance float32 `bun:"distance,scanonly"`
}

type Store struct {
	db         *bun.DB
	vectorSize int
}

const defaultVectorSize = 768

// NewStore connects and ensures the extension and table exist.
func NewStore(ctx context.Context, cfg *config.PgvectorConfig) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	size := cfg.VectorSize
	if size == 0 {
		size = defaultVectorSize
	}
	s := &Store{db: db, vectorSize: size}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pgvector: create extension: %w", err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
		id BIGSERIAL PRIMARY KEY,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		source TEXT NOT NULL,
		page_number INT NOT NULL,
		chunk_index INT NOT NULL
	)`, s.vectorSize)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, records []models.ChunkEmbedding) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(records))
	for i, r := range records {
		rows[i] = chunkRow{
			Content:    r.Content,
			Embedding:  vectorLiteral(r.Embedding),
			Source:     r.Source,
			PageNumber: r.PageNumber,
			ChunkIndex: r.ChunkIndex,
		}
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("pgvector: insert %d chunks: %w", len(rows), err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	lit := vectorLiteral(vector)
	var rows []chunkRow
	err := s.db.NewSelect().
		Model(&rows).
		Column("content", "source", "page_number", "chunk_index").
		ColumnExpr("embedding <=> ?::vector AS distance", lit).
		OrderExpr("embedding <=> ?::vector", lit).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}

	out := make([]models.SearchResult, len(rows))
	for i, r := range rows {
		out[i] = models.SearchResult{
			Chunk: models.Chunk{
				Content:    r.Content,
				Source:     r.Source,
				PageNumber: r.PageNumber,
				ChunkIndex: r.ChunkIndex,
			},
			// <=> is cosine distance
			Similarity: 1 - r.Distance,
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*chunkRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return count, nil
}

func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.NewTruncateTable().Model((*chunkRow)(nil)).Exec(ctx); err != nil {
		return fmt.Errorf("pgvector: truncate: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// vectorLiteral renders the pgvector input format, e.g. [0.1,0.2].
func vectorLiteral(vector []float32) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
