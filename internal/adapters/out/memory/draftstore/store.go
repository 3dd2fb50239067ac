// Package draftstore keeps drafts in process memory. It backs sessions when no
// external store is configured, and is the store of the package tests.
package draftstore

import (
	"context"
	"sync"
	"time"

	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

var (
	_ ports.DraftStore  = (*Store)(nil)
	_ ports.DraftPurger = (*Store)(nil)
)

type record struct {
	payload   []byte
	updatedAt time.Time
}

// Store is a concurrency-safe map of draft payloads.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		records: make(map[string]record),
		now:     time.Now,
	}
}

func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record{payload: append([]byte(nil), payload...), updatedAt: s.now()}
	return nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	if !ok {
		return nil, errs.NewObjectNotFoundError("draft", key)
	}
	return append([]byte(nil), r.payload...), nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// PurgeOlderThan drops drafts saved before cutoff.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for key, r := range s.records {
		if r.updatedAt.Before(cutoff) {
			delete(s.records, key)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of stored drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
