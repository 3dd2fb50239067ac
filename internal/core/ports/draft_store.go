package ports

import (
	"context"
	"time"
)

// DraftStore persists one serialized draft per session key. Writes are last-write-wins;
// a session has a single writer.
type DraftStore interface {
	// Save stores payload under key, replacing any previous value.
	Save(ctx context.Context, key string, payload []byte) error

	// Load returns the payload stored under key.
	// Returns errs.ObjectNotFoundError when nothing is stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// Clear removes the payload stored under key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
}

// DraftPurger deletes drafts that have not been saved for a while.
// Stores that expire entries on their own do not implement it.
type DraftPurger interface {
	// PurgeOlderThan removes drafts last saved before cutoff and returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
