package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
)

const (
	// MinNameLength is the shortest accepted first or last name.
	MinNameLength = 2
	// MinDesignationLength is the shortest accepted parcel designation.
	MinDesignationLength = 3
)

var (
	// localPhonePattern matches Cameroonian mobile and fixed numbers, +237 optional.
	localPhonePattern = regexp.MustCompile(`^(?:\+237)?(6|2)(?:[235-9]\d{7})$`)
	// mobileMoneyPattern matches numbers that can be debited by mobile money.
	mobileMoneyPattern = regexp.MustCompile(`^(\+237\s?)?6[0-9]{8}$`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validator checks stage inputs against the draft they would complete.
//
// Rules per stage:
//   - Sender, Recipient: names of at least 2 characters, a local phone number, an email
//     when one is given, and every location field unless the sender uses the current
//     location shortcut (coordinates are then mandatory)
//   - Package: photo, designation of at least 3 characters, weight > 0, numeric
//     dimensions, declared value when insured, known tier and transport method
//   - Route: a resolved route with a positive distance
//   - Signature: image data
//   - Payment: a known method; mobile money needs a debitable phone number
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() Validator {
	return Validator{}
}

// Validate checks input against draft. An empty result means the input may complete
// the draft's current stage.
func (v Validator) Validate(draft *expedition.Draft, input expedition.StageInput) FieldErrors {
	result := FieldErrors{}

	if err := draft.Validate(); err != nil {
		result.add("draft", err)
		return result
	}
	if input == nil {
		result.add("input", errs.NewValueIsRequiredError("input"))
		return result
	}
	if input.Stage() != draft.Stage() {
		result.add("stage", fmt.Errorf("%w: input completes %s, draft is on %s",
			expedition.ErrStageTransition, input.Stage(), draft.Stage()))
		return result
	}

	switch in := input.(type) {
	case expedition.SenderInput:
		v.validateParty(result, in.PartyInput, !in.UseCurrentLocation)
		if in.UseCurrentLocation && !in.HasCoordinates() {
			result.add("coordinates", errs.NewValueIsRequiredErrorWithCause("coordinates",
				fmt.Errorf("current location shortcut needs a position")))
		}
	case expedition.RecipientInput:
		v.validateParty(result, in.PartyInput, true)
	case expedition.ParcelInput:
		v.validateParcel(result, in)
	case expedition.RouteInput:
		if !draft.Route().IsResolved() {
			result.add("distanceKm", errs.NewValueIsRequiredErrorWithCause("distanceKm", expedition.ErrRouteIsNotResolved))
		}
	case expedition.SignatureInput:
		if strings.TrimSpace(in.ImageData) == "" {
			result.add("signature", errs.NewValueIsRequiredError("signature"))
		}
	case expedition.PaymentInput:
		v.validatePayment(result, in)
	default:
		result.add("input", errs.NewValueIsInvalidErrorWithCause("input", fmt.Errorf("unsupported input %T", input)))
	}

	return result
}

func (v Validator) validateParty(result FieldErrors, in expedition.PartyInput, locationRequired bool) {
	result.add("firstName", checkMinLength("firstName", in.FirstName, MinNameLength))
	result.add("lastName", checkMinLength("lastName", in.LastName, MinNameLength))
	result.add("phone", CheckLocalPhone(in.Phone))

	if email := strings.TrimSpace(in.Email); email != "" && !emailPattern.MatchString(email) {
		result.add("email", errs.NewValueIsInvalidError("email"))
	}

	if locationRequired {
		for field, value := range map[string]string{
			"country":  in.Country,
			"region":   in.Region,
			"city":     in.City,
			"address":  in.Address,
			"landmark": in.Landmark,
		} {
			if strings.TrimSpace(value) == "" {
				result.add(field, errs.NewValueIsRequiredError(field))
			}
		}
	}

	switch {
	case in.HasCoordinates():
		_, err := kernel.NewCoordinates(*in.Latitude, *in.Longitude)
		result.add("coordinates", err)
	case in.Latitude != nil || in.Longitude != nil:
		result.add("coordinates", errs.NewValueIsInvalidErrorWithCause("coordinates",
			fmt.Errorf("latitude and longitude go together")))
	}
}

func (v Validator) validateParcel(result FieldErrors, in expedition.ParcelInput) {
	if in.Photo.IsEmpty() {
		result.add("photo", errs.NewValueIsRequiredError("photo"))
	}
	result.add("designation", checkMinLength("designation", in.Designation, MinDesignationLength))

	weight, err := expedition.ParseQuantity("weight", in.Weight)
	if err == nil && weight <= 0 {
		err = errs.NewValueIsOutOfRangeError("weight", weight, 0, "∞")
	}
	result.add("weight", err)

	for field, raw := range map[string]string{"length": in.Length, "width": in.Width, "height": in.Height} {
		_, err := expedition.ParseOptionalQuantity(field, raw)
		result.add(field, err)
	}

	if in.Insured {
		_, err := expedition.ParseQuantity("declaredValue", in.DeclaredValue)
		result.add("declaredValue", err)
	} else {
		_, err := expedition.ParseOptionalQuantity("declaredValue", in.DeclaredValue)
		result.add("declaredValue", err)
	}

	_, err = expedition.ParseExpressTier(in.ExpressTier)
	result.add("expressTier", err)
	_, err = expedition.ParseTransportMethod(in.TransportMethod)
	result.add("transportMethod", err)
}

func (v Validator) validatePayment(result FieldErrors, in expedition.PaymentInput) {
	method, err := expedition.ParsePaymentMethod(in.Method)
	if err != nil {
		result.add("method", err)
		return
	}
	if method != expedition.PaymentMobileMoney {
		return
	}

	_, err = expedition.ParseMobileOperator(in.Operator)
	result.add("operator", err)
	result.add("mobilePhone", CheckMobileMoneyPhone(in.MobilePhone))
}

// CheckLocalPhone validates a sender or recipient phone number, ignoring whitespace.
func CheckLocalPhone(raw string) error {
	phone := expedition.StripSpaces(raw)
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	if !localPhonePattern.MatchString(phone) {
		return errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("%q is not a local phone number", phone))
	}
	return nil
}

// CheckMobileMoneyPhone validates the number debited by a mobile money payment.
func CheckMobileMoneyPhone(raw string) error {
	phone := expedition.StripSpaces(raw)
	if phone == "" {
		return errs.NewValueIsRequiredError("mobilePhone")
	}
	if !mobileMoneyPattern.MatchString(phone) {
		return errs.NewValueIsInvalidErrorWithCause("mobilePhone",
			fmt.Errorf("%q is not a mobile money number", phone))
	}
	return nil
}

func checkMinLength(field, raw string, minLength int) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return errs.NewValueIsRequiredError(field)
	}
	if n := utf8.RuneCountInString(value); n < minLength {
		return errs.NewValueIsOutOfRangeError(field, n, minLength, "∞")
	}
	return nil
}
