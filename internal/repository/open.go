package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Domenick1991/skydispatch/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open returns the document store selected by cfg.Backend together with a
// function that releases it.
func Open(ctx context.Context, cfg config.StorageConfig, db config.DatabaseConfig) (DocumentStore, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), noop, nil

	case config.StorageFile:
		store, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("file store: %w", err)
		}
		return store, noop, nil

	case config.StorageSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("sqlite dir: %w", err)
			}
		}
		store, err := NewSQLiteDocumentStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return store, func() { _ = store.Close() }, nil

	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, db.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := NewPGDocumentStore(pool)
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return store, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
