package commands

import (
	"errors"
	"time"

	"expedition/internal/pkg/guard"
)

var (
	ErrPurgeStaleDraftsCommandIsNotConstructed = errors.New(
		"PurgeStaleDraftsCommand must be created via NewPurgeStaleDraftsCommand constructor",
	)
	ErrRetentionIsInvalid = errors.New("retention must be greater than 0")
)

// PurgeStaleDraftsCommand asks for the drafts not saved within the retention window to
// be deleted from the store.
//
// Example:
//
//	cmd, err := NewPurgeStaleDraftsCommand(7 * 24 * time.Hour)
//	if err != nil {
//	    return fmt.Errorf("invalid retention: %w", err)
//	}
//	purged, err := handler.Handle(ctx, cmd)
type PurgeStaleDraftsCommand struct { //nolint:recvcheck //using for validation
	retention time.Duration

	guard guard.ConstructorGuard
}

// NewPurgeStaleDraftsCommand creates the command; retention must be positive.
func NewPurgeStaleDraftsCommand(retention time.Duration) (PurgeStaleDraftsCommand, error) {
	cmd := PurgeStaleDraftsCommand{guard: guard.NewConstructorGuard()}
	if err := cmd.setRetention(retention); err != nil {
		return PurgeStaleDraftsCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PurgeStaleDraftsCommand) Validate() error {
	return c.guard.Validate(ErrPurgeStaleDraftsCommandIsNotConstructed)
}

// Retention returns how long an untouched draft is kept.
func (c PurgeStaleDraftsCommand) Retention() time.Duration {
	return c.retention
}

func (c *PurgeStaleDraftsCommand) setRetention(retention time.Duration) error {
	if retention <= 0 {
		return ErrRetentionIsInvalid
	}

	c.retention = retention
	return nil
}
