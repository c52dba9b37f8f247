package repository

import (
	"context"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"go.uber.org/zap"
)

// FlightRepository loads and replaces the whole flight list.
type FlightRepository interface {
	Load(ctx context.Context) ([]domain.Flight, error)
	Save(ctx context.Context, flights []domain.Flight) error
}

type DocFlightRepository struct {
	store DocumentStore
	log   *zap.Logger
}

func NewFlightRepository(store DocumentStore, log *zap.Logger) FlightRepository {
	return &DocFlightRepository{store: store, log: log.Named("flights-repo")}
}

func (r *DocFlightRepository) Load(ctx context.Context) ([]domain.Flight, error) {
	return loadList[domain.Flight](ctx, r.store, CollectionFlights, r.log), nil
}

func (r *DocFlightRepository) Save(ctx context.Context, flights []domain.Flight) error {
	return saveList(ctx, r.store, CollectionFlights, flights)
}

var _ FlightRepository = (*DocFlightRepository)(nil)
