package expedition

import (
	"errors"
	"fmt"
	"strings"

	"expedition/internal/pkg/errs"
)

var (
	// ErrDraftIsNotConstructed is returned when a Draft was not created through
	// NewDraft or RestoreDraft.
	ErrDraftIsNotConstructed = errors.New("Draft must be created via NewDraft or RestoreDraft")

	// ErrRouteIsNotResolved is returned when the route stage is completed without a distance.
	ErrRouteIsNotResolved = errors.New("route is not resolved")
)

// Draft is the in-progress shipment request: everything the wizard has collected so
// far plus the quote derived from it. It is the aggregate root of the intake workflow.
//
// Draft follows these invariants:
//   - The stage moves by exactly one step per transition and never skips
//   - The base price is unknown until the package stage has been completed once
//   - The travel price is 0 while the route is unresolved
//   - Pricing is recomputed on every mutation and never set from outside
//   - A draft without a photo never goes past the package stage
//   - Only Confirm reaches the confirmation stage, and it needs a tracking id
type Draft struct {
	stage     Stage
	sender    Party
	recipient Party
	parcel    Parcel
	route     Route
	signature Signature
	payment   Payment
	pricing   Pricing

	// parcelPriced is set once the package stage has been completed.
	parcelPriced bool

	// trackingID is the reference returned by a successful submission.
	trackingID string

	isConstructed bool
}

// NewDraft creates an empty draft on the sender stage with default locations,
// standard express tier and cash payment.
//
// Example:
//
//	draft := expedition.NewDraft()
//	fmt.Println(draft.Stage()) // Sender
func NewDraft() *Draft {
	return &Draft{
		stage:         StageSender,
		sender:        defaultParty(),
		recipient:     defaultParty(),
		parcel:        defaultParcel(),
		payment:       defaultPayment(),
		pricing:       NewPricing(nil, 0, 0),
		isConstructed: true,
	}
}

// Validate ensures the draft was created through NewDraft or RestoreDraft.
func (d *Draft) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDraftIsNotConstructed
	}
	return nil
}

// Stage returns the current wizard stage.
func (d *Draft) Stage() Stage {
	return d.stage
}

// Sender returns a copy of the sender.
func (d *Draft) Sender() Party {
	return d.sender.clone()
}

// Recipient returns a copy of the recipient.
func (d *Draft) Recipient() Party {
	return d.recipient.clone()
}

// Parcel returns a copy of the parcel description.
func (d *Draft) Parcel() Parcel {
	return d.parcel.clone()
}

// Route returns a copy of the route.
func (d *Draft) Route() Route {
	return d.route.clone()
}

// Signature returns a copy of the signature.
func (d *Draft) Signature() Signature {
	return d.signature.clone()
}

// Payment returns the payment choice.
func (d *Draft) Payment() Payment {
	return d.payment
}

// Pricing returns a copy of the current quote.
func (d *Draft) Pricing() Pricing {
	return d.pricing.clone()
}

// TrackingID returns the submission reference, empty before confirmation.
func (d *Draft) TrackingID() string {
	return d.trackingID
}

// HasPhoto reports whether the parcel photo is present.
func (d *Draft) HasPhoto() bool {
	return !d.parcel.Photo.IsEmpty()
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	c := *d
	c.sender = d.sender.clone()
	c.recipient = d.recipient.clone()
	c.parcel = d.parcel.clone()
	c.route = d.route.clone()
	c.signature = d.signature.clone()
	c.pricing = d.pricing.clone()
	return &c
}

// PrefillSender replaces the sender while the draft is still on the sender stage.
// The stage does not move.
func (d *Draft) PrefillSender(sender Party) error {
	if err := d.expect(StageSender); err != nil {
		return err
	}
	d.sender = sender.clone()
	return nil
}

// CompleteSender stores the sender and moves to the recipient stage. A changed pickup
// location discards a previously resolved route.
func (d *Draft) CompleteSender(sender Party, quoter Quoter) error {
	next, err := d.transition(StageSender)
	if err != nil {
		return err
	}
	if !d.sender.SameLocation(sender) {
		d.route = Route{}
	}
	d.sender = sender.clone()
	d.reprice(quoter)
	d.stage = next
	return nil
}

// CompleteRecipient stores the recipient and moves to the package stage. A changed
// delivery location discards a previously resolved route.
func (d *Draft) CompleteRecipient(recipient Party, quoter Quoter) error {
	next, err := d.transition(StageRecipient)
	if err != nil {
		return err
	}
	if !d.recipient.SameLocation(recipient) {
		d.route = Route{}
	}
	d.recipient = recipient.clone()
	d.reprice(quoter)
	d.stage = next
	return nil
}

// CompletePackage stores the parcel, prices the handling and moves to the route stage.
// A changed transport method discards a previously resolved route, since the route
// profile depends on it.
//
// Returns:
//   - ValueIsRequiredError when the parcel has no photo
//   - ErrStageTransition when the draft is not on the package stage
func (d *Draft) CompletePackage(parcel Parcel, quoter Quoter) error {
	next, err := d.transition(StagePackage)
	if err != nil {
		return err
	}
	if parcel.Photo.IsEmpty() {
		return errs.NewValueIsRequiredError("photo")
	}
	if d.parcel.TransportMethod != parcel.TransportMethod {
		d.route = Route{}
	}
	d.parcel = parcel.clone()
	d.parcelPriced = true
	d.reprice(quoter)
	d.stage = next
	return nil
}

// AttachRoute stores a resolved route and reprices the travel. The draft must be on the
// route stage; the stage does not move. A route without a positive distance is refused.
func (d *Draft) AttachRoute(route Route, quoter Quoter) error {
	if err := d.expect(StageRoute); err != nil {
		return err
	}
	var distanceErr, durationErr error
	if !route.IsResolved() {
		distanceErr = errs.NewValueIsOutOfRangeError("distanceKm", route.DistanceKm, 0, "∞")
	}
	if route.DurationMinutes < 0 {
		durationErr = errs.NewValueIsOutOfRangeError("durationMinutes", route.DurationMinutes, 0, "∞")
	}
	if err := errors.Join(distanceErr, durationErr); err != nil {
		return err
	}
	d.route = route.clone()
	d.reprice(quoter)
	return nil
}

// CompleteRoute moves to the signature stage once the route is resolved.
func (d *Draft) CompleteRoute() error {
	next, err := d.transition(StageRoute)
	if err != nil {
		return err
	}
	if !d.route.IsResolved() {
		return ErrRouteIsNotResolved
	}
	d.stage = next
	return nil
}

// CompleteSignature stores the signature and moves to the payment stage.
func (d *Draft) CompleteSignature(signature Signature) error {
	next, err := d.transition(StageSignature)
	if err != nil {
		return err
	}
	if !signature.IsPresent() {
		return errs.NewValueIsRequiredError("signature")
	}
	d.signature = signature.clone()
	d.stage = next
	return nil
}

// SelectPayment stores the payment choice and reprices the operator fee. The draft
// must be on the payment stage; the stage does not move.
func (d *Draft) SelectPayment(payment Payment, quoter Quoter) error {
	if err := d.expect(StagePayment); err != nil {
		return err
	}
	if err := payment.Method.Validate(); err != nil {
		return err
	}
	d.payment = payment
	d.reprice(quoter)
	return nil
}

// Confirm records the tracking id of the submitted shipment and moves to the terminal
// confirmation stage.
func (d *Draft) Confirm(trackingID string) error {
	next, err := d.stage.Finalize()
	if err != nil {
		return err
	}
	if strings.TrimSpace(trackingID) == "" {
		return errs.NewValueIsRequiredError("trackingId")
	}
	d.trackingID = trackingID
	d.stage = next
	return nil
}

// Retreat moves one stage back. Entered data is kept.
func (d *Draft) Retreat() error {
	previous, err := d.stage.Previous()
	if err != nil {
		return err
	}
	d.stage = previous
	return nil
}

func (d *Draft) expect(stage Stage) error {
	if d.stage != stage {
		return fmt.Errorf("%w: draft is on %s, operation needs %s", ErrStageTransition, d.stage, stage)
	}
	return nil
}

func (d *Draft) transition(from Stage) (Stage, error) {
	if err := d.expect(from); err != nil {
		return StageUnknown, err
	}
	return d.stage.Next()
}

func (d *Draft) reprice(quoter Quoter) {
	var base *int64
	if d.parcelPriced {
		handling := quoter.HandlingPrice(d.parcel)
		base = &handling
	}
	d.pricing = NewPricing(base, quoter.TravelPrice(d.route.DistanceKm), quoter.OperatorFee(d.payment.Method))
}
