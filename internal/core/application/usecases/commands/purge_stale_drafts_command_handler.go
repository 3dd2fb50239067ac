package commands

import (
	"context"
	"time"

	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

// PurgeStaleDraftsCommandHandler deletes drafts older than the command's retention from
// stores that do not expire entries themselves.
type PurgeStaleDraftsCommandHandler struct {
	purger ports.DraftPurger
	now    func() time.Time
}

// NewPurgeStaleDraftsCommandHandler creates a handler over purger. A nil now means time.Now.
func NewPurgeStaleDraftsCommandHandler(
	purger ports.DraftPurger,
	now func() time.Time,
) (PurgeStaleDraftsCommandHandler, error) {
	if purger == nil {
		return PurgeStaleDraftsCommandHandler{}, errs.NewValueIsRequiredError("purger")
	}
	if now == nil {
		now = time.Now
	}
	return PurgeStaleDraftsCommandHandler{purger: purger, now: now}, nil
}

// Handle returns the number of deleted drafts.
func (h PurgeStaleDraftsCommandHandler) Handle(ctx context.Context, cmd PurgeStaleDraftsCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	cutoff := h.now().Add(-cmd.Retention())
	purged, err := h.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, ports.NewPersistenceError("purge", cutoff.UTC().Format(time.RFC3339), err)
	}
	return purged, nil
}
