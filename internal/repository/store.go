package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	CollectionFlights = "flights"
	CollectionUsers   = "users"
	CollectionLogs    = "logs"
)

// ErrNoDocument is returned by DocumentStore.Read for a collection that was never written.
var ErrNoDocument = errors.New("document not found")

// DocumentStore persists whole collections as JSON documents. Writes replace
// the previous document entirely.
type DocumentStore interface {
	Read(ctx context.Context, collection string) ([]byte, error)
	Write(ctx context.Context, collection string, data []byte) error
}

// loadList decodes a collection. Missing, unreadable or malformed documents
// yield an empty list so the service stays available.
func loadList[T any](ctx context.Context, store DocumentStore, collection string, log *zap.Logger) []T {
	data, err := store.Read(ctx, collection)
	if err != nil {
		if !errors.Is(err, ErrNoDocument) {
			log.Warn("read collection failed, using empty list", zap.String("collection", collection), zap.Error(err))
		}
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		log.Warn("decode collection failed, using empty list", zap.String("collection", collection), zap.Error(err))
		return []T{}
	}
	if list == nil {
		list = []T{}
	}
	return list
}

func saveList[T any](ctx context.Context, store DocumentStore, collection string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := store.Write(ctx, collection, data); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}
