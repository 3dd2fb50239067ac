// Package drafts stores drafts in a ports.DraftStore as versioned JSON snapshots,
// one per session under the expedition_form_progress key prefix.
package drafts

import (
	"context"
	"encoding/json"
	"errors"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

// KeyPrefix prefixes every stored draft key.
const KeyPrefix = "expedition_form_progress"

// Key returns the store key of a session's draft.
func Key(session kernel.UUID) string {
	return KeyPrefix + ":" + session.String()
}

// Repository saves and restores drafts. Store failures are reported as
// *ports.PersistenceError; a missing draft as errs.ObjectNotFoundError.
type Repository struct {
	store  ports.DraftStore
	quoter expedition.Quoter
}

// NewRepository creates a Repository over store. quoter reprices restored drafts.
func NewRepository(store ports.DraftStore, quoter expedition.Quoter) (*Repository, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if quoter == nil {
		return nil, errs.NewValueIsRequiredError("quoter")
	}
	return &Repository{store: store, quoter: quoter}, nil
}

// Save stores the draft of session.
func (r *Repository) Save(ctx context.Context, session kernel.UUID, draft *expedition.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(draft.Snapshot())
	if err != nil {
		return ports.NewPersistenceError("encode", Key(session), err)
	}

	if err := r.store.Save(ctx, Key(session), payload); err != nil {
		return ports.NewPersistenceError("save", Key(session), err)
	}
	return nil
}

// Load restores the draft of session.
func (r *Repository) Load(ctx context.Context, session kernel.UUID) (*expedition.Draft, error) {
	key := Key(session)

	payload, err := r.store.Load(ctx, key)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, ports.NewPersistenceError("load", key, err)
	}

	var snapshot expedition.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, ports.NewPersistenceError("decode", key, err)
	}

	draft, err := expedition.RestoreDraft(snapshot, r.quoter)
	if err != nil {
		return nil, ports.NewPersistenceError("restore", key, err)
	}
	return draft, nil
}

// Clear removes the draft of session.
func (r *Repository) Clear(ctx context.Context, session kernel.UUID) error {
	if err := r.store.Clear(ctx, Key(session)); err != nil {
		return ports.NewPersistenceError("clear", Key(session), err)
	}
	return nil
}
