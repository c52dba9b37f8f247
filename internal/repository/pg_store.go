package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDocumentStore keeps collections as JSONB rows in the documents table.
type PGDocumentStore struct {
	db *pgxpool.Pool
}

func NewPGDocumentStore(db *pgxpool.Pool) *PGDocumentStore {
	return &PGDocumentStore{db: db}
}

// CreateSchema creates the documents table if it does not exist.
func (s *PGDocumentStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (s *PGDocumentStore) Read(ctx context.Context, collection string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRow(ctx, `SELECT body FROM documents WHERE name=$1`, collection).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *PGDocumentStore) Write(ctx context.Context, collection string, data []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO documents (name, body, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`, collection, string(data))
	return err
}

var _ DocumentStore = (*PGDocumentStore)(nil)
