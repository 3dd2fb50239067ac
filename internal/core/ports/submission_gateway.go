package ports

import (
	"context"

	"expedition/internal/core/domain/model/expedition"
)

// SubmissionRequest is a draft ready to be turned into a shipment.
type SubmissionRequest struct {
	// ClientID identifies the account submitting; empty for guests.
	ClientID string
	Draft    *expedition.Draft
}

// SubmissionGateway hands finalized drafts to the shipment backend.
type SubmissionGateway interface {
	// Submit maps the draft to the backend representation and returns its tracking id.
	// Returns *SubmissionError on any failure, including an empty tracking id.
	Submit(ctx context.Context, request SubmissionRequest) (string, error)
}
