// Package draftstore keeps serialized drafts in Redis. Every save refreshes the entry's
// TTL, so abandoned drafts expire without a purge job.
package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is used when New is given a non-positive TTL.
const DefaultTTL = 7 * 24 * time.Hour

var _ ports.DraftStore = (*Store)(nil)

// Store implements ports.DraftStore with plain string keys.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New creates a store over client.
func New(client redis.UniversalClient, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("redis client")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errs.NewValueIsRequiredError("redis url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Save stores payload under key and restarts its TTL.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return errs.NewValueIsRequiredError("key")
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

// Load returns the payload stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.NewObjectNotFoundErrorWithCause("draft", key, err)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Clear deletes key.
func (s *Store) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// TTL returns the expiry applied on every save.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
