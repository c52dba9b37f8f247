package repository

import (
	"context"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"go.uber.org/zap"
)

type UserRepository interface {
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, users []domain.User) error
}

type DocUserRepository struct {
	store DocumentStore
	log   *zap.Logger
}

func NewUserRepository(store DocumentStore, log *zap.Logger) UserRepository {
	return &DocUserRepository{store: store, log: log.Named("users-repo")}
}

// Load fills in the dispatcher role for records written without one.
func (r *DocUserRepository) Load(ctx context.Context) ([]domain.User, error) {
	users := loadList[domain.User](ctx, r.store, CollectionUsers, r.log)
	for i := range users {
		if users[i].Role == "" {
			users[i].Role = domain.RoleDispatcher
		}
	}
	return users, nil
}

func (r *DocUserRepository) Save(ctx context.Context, users []domain.User) error {
	return saveList(ctx, r.store, CollectionUsers, users)
}

var _ UserRepository = (*DocUserRepository)(nil)
