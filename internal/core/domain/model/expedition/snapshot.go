package expedition

import (
	"fmt"

	"expedition/internal/pkg/errs"
)

// SnapshotVersion is the layout version written by Snapshot.
const SnapshotVersion = 1

// Snapshot is the serializable form of a Draft. Photos are normalized to their inline
// string form, so a binary upload is persisted as a data URL.
type Snapshot struct {
	Version    int       `json:"version"`
	Stage      Stage     `json:"stage"`
	Sender     Party     `json:"sender"`
	Recipient  Party     `json:"recipient"`
	Package    Parcel    `json:"package"`
	Route      Route     `json:"route"`
	Signature  Signature `json:"signature"`
	Payment    Payment   `json:"payment"`
	Pricing    Pricing   `json:"pricing"`
	TrackingID string    `json:"trackingId,omitempty"`
}

// Snapshot captures the draft. The result shares no memory with the draft.
func (d *Draft) Snapshot() Snapshot {
	parcel := d.parcel.clone()
	parcel.Photo = parcel.Photo.Normalized()

	return Snapshot{
		Version:    SnapshotVersion,
		Stage:      d.stage,
		Sender:     d.sender.clone(),
		Recipient:  d.recipient.clone(),
		Package:    parcel,
		Route:      d.route.clone(),
		Signature:  d.signature.clone(),
		Payment:    d.payment,
		Pricing:    d.pricing.clone(),
		TrackingID: d.trackingID,
	}
}

// RestoreDraft rebuilds a draft from a snapshot and recomputes its pricing with quoter.
// The stored pricing only tells whether the package stage was ever completed.
//
// Returns:
//   - *Draft: the restored draft
//   - error: VersionIsInvalidError for an unknown layout, or the broken invariants (joined)
func RestoreDraft(s Snapshot, quoter Quoter) (*Draft, error) {
	if s.Version != SnapshotVersion {
		return nil, errs.NewVersionIsInvalidErrorWithCause("draft",
			fmt.Errorf("snapshot version %d, expected %d", s.Version, SnapshotVersion))
	}
	if err := s.Stage.Validate(); err != nil {
		return nil, err
	}
	if s.Stage > StagePackage && s.Package.Photo.IsEmpty() {
		return nil, errs.NewValueIsRequiredErrorWithCause("photo",
			fmt.Errorf("draft on %s has no package photo", s.Stage))
	}
	if s.Stage > StageRoute && !s.Route.IsResolved() {
		return nil, fmt.Errorf("draft on %s: %w", s.Stage, ErrRouteIsNotResolved)
	}
	if s.Stage == StageConfirmation && s.TrackingID == "" {
		return nil, errs.NewValueIsRequiredErrorWithCause("trackingId",
			fmt.Errorf("draft on %s has no tracking id", s.Stage))
	}

	payment := s.Payment
	if payment.Method == "" {
		payment.Method = PaymentCash
	}
	if err := payment.Method.Validate(); err != nil {
		return nil, err
	}
	if s.Package.ExpressTier == "" {
		s.Package.ExpressTier = TierStandard
	}

	d := &Draft{
		stage:         s.Stage,
		sender:        s.Sender.clone(),
		recipient:     s.Recipient.clone(),
		parcel:        s.Package.clone(),
		route:         s.Route.clone(),
		signature:     s.Signature.clone(),
		payment:       payment,
		parcelPriced:  s.Pricing.BasePrice != nil || s.Stage > StagePackage,
		trackingID:    s.TrackingID,
		isConstructed: true,
	}
	d.reprice(quoter)
	return d, nil
}
