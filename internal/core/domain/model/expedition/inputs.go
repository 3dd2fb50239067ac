package expedition

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
)

// StageInput is the raw, unvalidated data a stage submits on advance.
type StageInput interface {
	// Stage returns the stage this input completes.
	Stage() Stage
}

// PartyInput carries the identity and location fields shared by sender and recipient.
type PartyInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Country   string
	Region    string
	City      string
	Address   string
	Landmark  string
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether both latitude and longitude were supplied.
func (in PartyInput) HasCoordinates() bool {
	return in.Latitude != nil && in.Longitude != nil
}

// Party converts the input into a Party: strings are trimmed, whitespace is removed
// from the phone, and coordinates are checked when both are present.
func (in PartyInput) Party() (Party, error) {
	p := Party{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     StripSpaces(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Country:   strings.TrimSpace(in.Country),
		Region:    strings.TrimSpace(in.Region),
		City:      strings.TrimSpace(in.City),
		Address:   strings.TrimSpace(in.Address),
		Landmark:  strings.TrimSpace(in.Landmark),
	}
	if in.HasCoordinates() {
		c, err := kernel.NewCoordinates(*in.Latitude, *in.Longitude)
		if err != nil {
			return Party{}, err
		}
		p.Coordinates = &c
	}
	return p, nil
}

// SenderInput completes the sender stage. With UseCurrentLocation set, the location
// fields are filled from the coordinates by reverse geocoding.
type SenderInput struct {
	PartyInput
	UseCurrentLocation bool
}

func (SenderInput) Stage() Stage { return StageSender }

// RecipientInput completes the recipient stage.
type RecipientInput struct {
	PartyInput
}

func (RecipientInput) Stage() Stage { return StageRecipient }

// ParcelInput completes the package stage. Numeric fields are kept as typed by the
// user; blank dimensions fall back to DefaultDimensionCm.
type ParcelInput struct {
	Photo             *Photo
	Designation       string
	Description       string
	Weight            string
	Length            string
	Width             string
	Height            string
	Fragile           bool
	Perishable        bool
	Liquid            bool
	Insured           bool
	DeclaredValue     string
	TransportMethod   string
	ExpressTier       string
	PickupRequested   bool
	DeliveryRequested bool
}

func (ParcelInput) Stage() Stage { return StagePackage }

// Parcel converts the input into a Parcel, joining every conversion error. The photo
// is required.
func (in ParcelInput) Parcel() (Parcel, error) {
	var photoErr error
	if in.Photo.IsEmpty() {
		photoErr = errs.NewValueIsRequiredError("photo")
	}
	parcel, err := in.Attributes()
	if err = errors.Join(photoErr, err); err != nil {
		return Parcel{}, err
	}
	return parcel, nil
}

// Attributes converts the priced attributes of the input, without requiring a photo.
func (in ParcelInput) Attributes() (Parcel, error) {
	weight, weightErr := ParseQuantity("weight", in.Weight)
	if weightErr == nil && weight <= 0 {
		weightErr = errs.NewValueIsOutOfRangeError("weight", weight, 0, "∞")
	}
	length, lengthErr := ParseOptionalQuantity("length", in.Length)
	width, widthErr := ParseOptionalQuantity("width", in.Width)
	height, heightErr := ParseOptionalQuantity("height", in.Height)

	var declared float64
	var declaredErr error
	if in.Insured {
		declared, declaredErr = ParseQuantity("declaredValue", in.DeclaredValue)
	} else if strings.TrimSpace(in.DeclaredValue) != "" {
		declared, declaredErr = ParseOptionalQuantity("declaredValue", in.DeclaredValue)
	}

	transport, transportErr := ParseTransportMethod(in.TransportMethod)
	tier, tierErr := ParseExpressTier(in.ExpressTier)

	if err := errors.Join(weightErr, lengthErr, widthErr, heightErr, declaredErr, transportErr, tierErr); err != nil {
		return Parcel{}, err
	}

	return Parcel{
		Photo:             in.Photo.clone(),
		Designation:       strings.TrimSpace(in.Designation),
		Description:       strings.TrimSpace(in.Description),
		WeightKg:          weight,
		LengthCm:          length,
		WidthCm:           width,
		HeightCm:          height,
		Fragile:           in.Fragile,
		Perishable:        in.Perishable,
		Liquid:            in.Liquid,
		Insured:           in.Insured,
		DeclaredValue:     declared,
		TransportMethod:   transport,
		ExpressTier:       tier,
		PickupRequested:   in.PickupRequested,
		DeliveryRequested: in.DeliveryRequested,
	}, nil
}

// RouteInput completes the route stage once the route has been resolved.
type RouteInput struct{}

func (RouteInput) Stage() Stage { return StageRoute }

// SignatureInput completes the signature stage.
type SignatureInput struct {
	ImageData string
}

func (SignatureInput) Stage() Stage { return StageSignature }

// PaymentInput is submitted with finalize.
type PaymentInput struct {
	Method      string
	Operator    string
	MobilePhone string
}

func (PaymentInput) Stage() Stage { return StagePayment }

// Payment converts the input into a Payment. Operator and phone are kept for
// mobile money only.
func (in PaymentInput) Payment() (Payment, error) {
	method, err := ParsePaymentMethod(in.Method)
	if err != nil {
		return Payment{}, err
	}
	if method != PaymentMobileMoney {
		return Payment{Method: method}, nil
	}
	operator, err := ParseMobileOperator(in.Operator)
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		Method:      method,
		Operator:    operator,
		MobilePhone: StripSpaces(in.MobilePhone),
	}, nil
}

// StripSpaces removes every whitespace rune from s.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var decimalPattern = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// ParseQuantity parses a required non-negative decimal. A comma is accepted as the
// decimal separator. Only plain decimal notation is accepted: no exponent, no hex
// and no NaN or Inf spelling.
func ParseQuantity(field, raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" {
		return 0, errs.NewValueIsRequiredError(field)
	}
	if !decimalPattern.MatchString(s) {
		return 0, errs.NewValueIsInvalidErrorWithCause(field, fmt.Errorf("%q is not a decimal number", raw))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(field, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errs.NewValueIsInvalidError(field)
	}
	if v < 0 {
		return 0, errs.NewValueIsOutOfRangeError(field, v, 0, "∞")
	}
	return v, nil
}

// ParseOptionalQuantity is ParseQuantity where a blank value yields 0.
func ParseOptionalQuantity(field, raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return ParseQuantity(field, raw)
}
