package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"expedition/internal/core/domain/model/kernel"
)

// DefaultIdleTTL is how long an untouched session stays in memory.
const DefaultIdleTTL = 30 * time.Minute

type sessionEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Sessions holds the controllers of the sessions currently in memory. Evicted
// sessions are restored from the draft store on their next Open.
type Sessions struct {
	deps    Dependencies
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessions creates an empty registry. A non-positive idleTTL means DefaultIdleTTL.
func NewSessions(deps Dependencies, idleTTL time.Duration) (*Sessions, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Sessions{
		deps:    deps,
		idleTTL: idleTTL,
		now:     time.Now,
		logger:  deps.Logger.With("component", "sessions"),
		entries: make(map[string]*sessionEntry),
	}, nil
}

// Create starts a new session with a fresh draft.
func (s *Sessions) Create(ctx context.Context) (*Controller, error) {
	c, err := NewController(kernel.NewUUID(), s.deps)
	if err != nil {
		return nil, err
	}
	if _, err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.put(c), nil
}

// Open returns the controller of session, restoring its draft from the store when the
// session is not in memory.
//
// Returns:
//   - errs.ObjectNotFoundError when the session is neither in memory nor stored
//   - *ports.PersistenceError when the store cannot be read
func (s *Sessions) Open(ctx context.Context, session kernel.UUID) (*Controller, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if c, ok := s.touch(session); ok {
		return c, nil
	}

	c, err := NewController(session, s.deps)
	if err != nil {
		return nil, err
	}
	if _, err := c.Restore(ctx); err != nil {
		return nil, err
	}
	return s.put(c), nil
}

// EvictIdle drops sessions untouched for the idle TTL and returns how many were
// dropped. Sessions waiting on an external call stay. A session that fell back to
// memory holds the only current copy of its draft, so it is saved first and stays
// while the store still fails.
func (s *Sessions) EvictIdle(ctx context.Context) int {
	type candidate struct {
		key      string
		entry    *sessionEntry
		lastSeen time.Time
	}

	now := s.now()
	s.mu.Lock()
	var idle []candidate
	for key, entry := range s.entries {
		if now.Sub(entry.lastSeen) >= s.idleTTL {
			idle = append(idle, candidate{key: key, entry: entry, lastSeen: entry.lastSeen})
		}
	}
	s.mu.Unlock()

	evicted := 0
	for _, cand := range idle {
		c := cand.entry.controller
		if c.Busy() {
			continue
		}
		if err := c.Flush(ctx); err != nil {
			if !errors.Is(err, ErrOperationInProgress) {
				s.logger.WarnContext(ctx, "idle session kept in memory, draft not saved",
					"session", cand.key, "error", err)
			}
			continue
		}
		if s.remove(cand.key, cand.entry, cand.lastSeen) {
			evicted++
		}
	}
	return evicted
}

// remove drops entry unless it was replaced or touched since lastSeen.
func (s *Sessions) remove(key string, entry *sessionEntry, lastSeen time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[key]
	if !ok || current != entry || !entry.lastSeen.Equal(lastSeen) {
		return false
	}
	entry.controller.Close()
	delete(s.entries, key)
	s.deps.Metrics.SetActiveSessions(len(s.entries))
	return true
}

// Len returns the number of sessions in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) touch(session kernel.UUID) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[session.String()]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.controller, true
}

// put registers c unless a concurrent Open registered the same session first.
func (s *Sessions) put(c *Controller) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.Session().String()
	if entry, ok := s.entries[key]; ok {
		entry.lastSeen = s.now()
		return entry.controller
	}
	s.entries[key] = &sessionEntry{controller: c, lastSeen: s.now()}
	s.deps.Metrics.SetActiveSessions(len(s.entries))
	return c
}
