package repository

import (
	"context"
	"sync"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"go.uber.org/zap"
)

// AuditLogRepository is append-only from the caller's point of view.
type AuditLogRepository interface {
	List(ctx context.Context) ([]domain.AuditEntry, error)
	Append(ctx context.Context, entry domain.AuditEntry) error
}

type DocAuditLogRepository struct {
	mu    sync.Mutex
	store DocumentStore
	log   *zap.Logger
}

func NewAuditLogRepository(store DocumentStore, log *zap.Logger) AuditLogRepository {
	return &DocAuditLogRepository{store: store, log: log.Named("logs-repo")}
}

func (r *DocAuditLogRepository) List(ctx context.Context) ([]domain.AuditEntry, error) {
	return loadList[domain.AuditEntry](ctx, r.store, CollectionLogs, r.log), nil
}

// Append rewrites the whole collection with entry added at the end.
func (r *DocAuditLogRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := loadList[domain.AuditEntry](ctx, r.store, CollectionLogs, r.log)
	entries = append(entries, entry)
	return saveList(ctx, r.store, CollectionLogs, entries)
}

var _ AuditLogRepository = (*DocAuditLogRepository)(nil)
