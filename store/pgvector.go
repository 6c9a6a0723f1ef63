package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore is a pgvector-backed alternative to the Qdrant REST
// backend. The collection name doubles as the table name.
type PostgresStore struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

func NewPostgresStore(ctx context.Context, connStr, collection string, dimension int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{
		pool:      pool,
		table:     collection,
		dimension: dimension,
	}, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) EnsureCollection(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id uuid PRIMARY KEY,
		document_id uuid NOT NULL,
		category text NOT NULL,
		title text NOT NULL DEFAULT '',
		content text NOT NULL,
		embedding vector(%d) NOT NULL
	)`, p.table, p.dimension)
	_, err := p.pool.Exec(ctx, query)
	return err
}

// Upsert writes all points in one transaction; once committed they are
// visible to subsequent searches.
func (p *PostgresStore) Upsert(ctx context.Context, points []Point) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, document_id, category, title, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			category = EXCLUDED.category,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`, p.table)

	batch := &pgx.Batch{}
	for _, pt := range points {
		batch.Queue(query,
			pt.ID,
			pt.Payload.DocumentID,
			pt.Payload.Category,
			pt.Payload.Title,
			pt.Payload.Text,
			pgvector.NewVector(toFloat32(pt.Vector)),
		)
	}
	return p.pool.SendBatch(ctx, batch).Close()
}

func (p *PostgresStore) Search(ctx context.Context, vector []float64, topK int, category string) ([]Hit, error) {
	vec := pgvector.NewVector(toFloat32(vector))
	query := fmt.Sprintf(`SELECT id, document_id, category, title, content,
		1 - (embedding <=> $1) AS score FROM %s`, p.table)
	args := []any{vec}
	if category != "" {
		query += " WHERE category = $2"
		args = append(args, category)
	}
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT %d", topK)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			id, docID uuid.UUID
			h         Hit
		)
		if err := rows.Scan(&id, &docID, &h.Payload.Category, &h.Payload.Title, &h.Payload.Text, &h.Score); err != nil {
			return nil, err
		}
		h.ID = id.String()
		h.Payload.DocumentID = docID.String()
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
