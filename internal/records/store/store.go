// Package store persists each module's record collection as one value in the
// key-value store. Reads and writes always move the whole collection.
package store

import (
	"context"
	"errors"
	"fmt"

	"fieldsync/internal/kv"
	"fieldsync/internal/records/models"
	"fieldsync/pkg/platform/sentinel"
)

// CollectionStore loads and saves whole module collections.
type CollectionStore struct {
	kv kv.Store
}

func New(store kv.Store) *CollectionStore {
	return &CollectionStore{kv: store}
}

// Load returns the module's collection in insertion order. A missing key is
// an empty collection. KV failures wrap sentinel.ErrUnavailable and
// undecodable data wraps sentinel.ErrBadData.
func (s *CollectionStore) Load(ctx context.Context, m models.Module) ([]*models.Record, error) {
	raw, ok, err := s.kv.Get(ctx, kv.ModuleKey(m.String()))
	if err != nil {
		return nil, errors.Join(sentinel.ErrUnavailable, fmt.Errorf("load %s: %w", m, err))
	}
	if !ok || raw == "" {
		return []*models.Record{}, nil
	}
	records, err := models.DecodeCollection(m, raw)
	if err != nil {
		return nil, errors.Join(sentinel.ErrBadData, err)
	}
	return records, nil
}

// Save replaces the module's collection.
func (s *CollectionStore) Save(ctx context.Context, m models.Module, records []*models.Record) error {
	raw, err := models.EncodeCollection(records)
	if err != nil {
		return errors.Join(sentinel.ErrBadData, fmt.Errorf("encode %s: %w", m, err))
	}
	if err := s.kv.Set(ctx, kv.ModuleKey(m.String()), raw); err != nil {
		return errors.Join(sentinel.ErrUnavailable, fmt.Errorf("save %s: %w", m, err))
	}
	return nil
}
