package queries

import (
	"context"

	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
)

// SessionOpener returns the controller of a session. *wizard.Sessions implements it.
type SessionOpener interface {
	Open(ctx context.Context, session kernel.UUID) (*wizard.Controller, error)
}

// GetSessionDraftQueryHandler reads session drafts.
type GetSessionDraftQueryHandler struct {
	sessions SessionOpener
}

func NewGetSessionDraftQueryHandler(sessions SessionOpener) (GetSessionDraftQueryHandler, error) {
	if sessions == nil {
		return GetSessionDraftQueryHandler{}, errs.NewValueIsRequiredError("sessions")
	}
	return GetSessionDraftQueryHandler{sessions: sessions}, nil
}

// GetSessionDraftQueryResponse is the current draft of a session and how it is kept.
type GetSessionDraftQueryResponse struct {
	Draft      *expedition.Draft
	Restored   bool
	MemoryOnly bool
}

// Handle returns a copy of the session draft.
//
// Returns:
//   - errs.ObjectNotFoundError when the session is unknown
//   - *ports.PersistenceError when the draft store cannot be read
func (h GetSessionDraftQueryHandler) Handle(
	ctx context.Context,
	query GetSessionDraftQuery,
) (GetSessionDraftQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetSessionDraftQueryResponse{}, err
	}

	c, err := h.sessions.Open(ctx, query.Session())
	if err != nil {
		return GetSessionDraftQueryResponse{}, err
	}
	draft := c.Draft()
	if draft == nil {
		return GetSessionDraftQueryResponse{}, errs.NewObjectNotFoundError("session", query.Session().String())
	}
	return GetSessionDraftQueryResponse{
		Draft:      draft,
		Restored:   c.Restored(),
		MemoryOnly: c.MemoryOnly(),
	}, nil
}
