package expedition

import (
	"errors"
	"fmt"

	"expedition/internal/pkg/errs"
)

// ErrStageTransition is wrapped by every refused stage transition.
var ErrStageTransition = errors.New("stage transition is not allowed")

// Stage is the step of the intake wizard the draft is currently on.
//
// State transitions:
//
//	Sender ─> Recipient ─> Package ─> Route ─> Signature ─> Payment ══> Confirmation
//	   <────────── <──────── <─────── <──────── <────────
//	 (advance: one step forward, retreat: one step back, ══> finalize only)
//
// Confirmation is terminal: only a reset (a new draft) leaves it.
type Stage int

const (
	// StageUnknown is the zero value and never a valid stage.
	StageUnknown Stage = iota
	// StageSender collects the sender identity and pickup location.
	StageSender
	// StageRecipient collects the recipient identity and delivery location.
	StageRecipient
	// StagePackage collects the parcel description; completing it prices the handling.
	StagePackage
	// StageRoute resolves the route between both locations; completing it needs a distance.
	StageRoute
	// StageSignature collects the sender's handwritten signature.
	StageSignature
	// StagePayment collects the payment method; it is left through finalize only.
	StagePayment
	// StageConfirmation holds the tracking reference of the submitted shipment.
	StageConfirmation
)

// FirstStage and LastStage bound the valid stages.
const (
	FirstStage = StageSender
	LastStage  = StageConfirmation
)

func getStageStrings() map[Stage]string {
	return map[Stage]string{
		StageUnknown:      "Unknown",
		StageSender:       "Sender",
		StageRecipient:    "Recipient",
		StagePackage:      "Package",
		StageRoute:        "Route",
		StageSignature:    "Signature",
		StagePayment:      "Payment",
		StageConfirmation: "Confirmation",
	}
}

// Validate checks that s is one of the seven wizard stages.
func (s Stage) Validate() error {
	if s < FirstStage || s > LastStage {
		return errs.NewValueIsOutOfRangeError("stage", int(s), int(FirstStage), int(LastStage))
	}
	return nil
}

// String returns the stage name, or "Unknown" for invalid values.
func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether s is the confirmation stage.
func (s Stage) IsTerminal() bool {
	return s == StageConfirmation
}

// Next returns the stage reached by completing s.
//
// Returns:
//   - the following stage for Sender through Signature
//   - ErrStageTransition for Payment (use Finalize), Confirmation and invalid stages
func (s Stage) Next() (Stage, error) {
	if err := s.Validate(); err != nil {
		return StageUnknown, err
	}
	if s >= StagePayment {
		return StageUnknown, fmt.Errorf("%w: %s cannot advance, it is completed by finalize or terminal", ErrStageTransition, s)
	}
	return s + 1, nil
}

// Previous returns the stage reached by going back from s.
//
// Returns:
//   - the preceding stage for Recipient through Payment
//   - ErrStageTransition for Sender (nothing before it) and Confirmation (terminal)
func (s Stage) Previous() (Stage, error) {
	if err := s.Validate(); err != nil {
		return StageUnknown, err
	}
	if s == StageSender || s.IsTerminal() {
		return StageUnknown, fmt.Errorf("%w: cannot go back from %s", ErrStageTransition, s)
	}
	return s - 1, nil
}

// Finalize returns Confirmation when s is Payment.
func (s Stage) Finalize() (Stage, error) {
	if s != StagePayment {
		return StageUnknown, fmt.Errorf("%w: %s cannot be finalized", ErrStageTransition, s)
	}
	return StageConfirmation, nil
}
