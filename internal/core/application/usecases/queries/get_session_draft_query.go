package queries

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var ErrGetSessionDraftQueryIsNotConstructed = errors.New(
	"GetSessionDraftQuery must be created via NewGetSessionDraftQuery constructor",
)

// GetSessionDraftQuery reads the current draft of a session, restoring the session from
// the draft store when it is no longer in memory.
type GetSessionDraftQuery struct {
	session kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetSessionDraftQuery(session kernel.UUID) (GetSessionDraftQuery, error) {
	if err := session.Validate(); err != nil {
		return GetSessionDraftQuery{}, err
	}
	return GetSessionDraftQuery{session: session, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetSessionDraftQuery) Validate() error {
	return q.guard.Validate(ErrGetSessionDraftQueryIsNotConstructed)
}

func (q GetSessionDraftQuery) Session() kernel.UUID {
	return q.session
}
