package commands

import (
	"context"

	"expedition/internal/pkg/errs"
)

// EvictIdleSessionsCommandHandler releases idle wizard sessions.
//
// Example:
//
//	handler, _ := NewEvictIdleSessionsCommandHandler(sessions)
//	evicted, err := handler.Handle(ctx, NewEvictIdleSessionsCommand())
type EvictIdleSessionsCommandHandler struct {
	sessions SessionEvictor
}

func NewEvictIdleSessionsCommandHandler(sessions SessionEvictor) (EvictIdleSessionsCommandHandler, error) {
	if sessions == nil {
		return EvictIdleSessionsCommandHandler{}, errs.NewValueIsRequiredError("sessions")
	}
	return EvictIdleSessionsCommandHandler{sessions: sessions}, nil
}

// Handle returns the number of evicted sessions.
func (h EvictIdleSessionsCommandHandler) Handle(ctx context.Context, cmd EvictIdleSessionsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return h.sessions.EvictIdle(ctx), nil
}
