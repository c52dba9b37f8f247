package flights

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/Domenick1991/skydispatch/internal/repository"
	"go.uber.org/zap"
)

// Cache is an optional read-through copy of the flight list.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

// Store serializes every read-modify-write of the flight list inside this
// process. Each cycle loads the full list, drops expired transfers, applies
// the change and writes the full list back.
type Store struct {
	mu    sync.Mutex
	repo  repository.FlightRepository
	cache Cache
	log   *zap.Logger
}

func NewStore(repo repository.FlightRepository, cache Cache, log *zap.Logger) *Store {
	return &Store{repo: repo, cache: cache, log: log.Named("flight-store")}
}

// MutateFunc receives the normalized list and returns the list to persist.
// Returning an error discards the change.
type MutateFunc func(flights []domain.Flight) ([]domain.Flight, error)

// Snapshot returns the current list with expired transfers cleared.
func (s *Store) Snapshot(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flights, expired, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(expired) > 0 {
		if err := s.save(ctx, flights); err != nil {
			return nil, err
		}
	}
	return flights, nil
}

// Mutate runs fn under the store lock and persists its result.
func (s *Store) Mutate(ctx context.Context, now time.Time, fn MutateFunc) ([]domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flights, expired, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}

	next, fnErr := fn(flights)
	if fnErr != nil {
		if len(expired) > 0 {
			if err := s.save(ctx, flights); err != nil {
				s.log.Warn("persist expired transfers", zap.Error(err))
			}
		}
		return nil, fnErr
	}

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// ExpireTransfers clears every elapsed transfer and returns the flights as
// they were before clearing.
func (s *Store) ExpireTransfers(ctx context.Context, now time.Time) ([]domain.Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flights, expired, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}
	if err := s.save(ctx, flights); err != nil {
		return nil, err
	}
	return expired, nil
}

func (s *Store) load(ctx context.Context, now time.Time) (flights, expired []domain.Flight, err error) {
	if s.cache != nil {
		cached, cacheErr := s.cache.GetFlights(ctx)
		if cacheErr != nil {
			s.log.Warn("flight cache read failed", zap.Error(cacheErr))
		}
		flights = cached
	}
	if flights == nil {
		flights, err = s.repo.Load(ctx)
		if err != nil {
			return nil, nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetFlights(ctx, flights); err != nil {
				s.log.Warn("flight cache write failed", zap.Error(err))
			}
		}
	}

	for i, f := range flights {
		cleared, changed := f.ClearExpiredTransfer(now)
		if changed {
			expired = append(expired, f)
			flights[i] = cleared
		}
	}
	return flights, expired, nil
}

func (s *Store) save(ctx context.Context, flights []domain.Flight) error {
	if err := s.repo.Save(ctx, flights); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flight cache write failed", zap.Error(err))
		}
	}
	return nil
}

// Find returns the index of the flight with id or -1.
func Find(flights []domain.Flight, id string) int {
	for i, f := range flights {
		if f.ID == id {
			return i
		}
	}
	return -1
}
