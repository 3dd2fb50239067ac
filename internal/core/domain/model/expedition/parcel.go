package expedition

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"expedition/internal/pkg/errs"
)

// DefaultDimensionCm replaces a blank length, width or height.
const DefaultDimensionCm = 10.0

// ExpressTier is the delivery speed the sender pays for.
type ExpressTier string

const (
	TierStandard ExpressTier = "standard"
	Tier48h      ExpressTier = "48h"
	Tier24h      ExpressTier = "24h"
)

// ParseExpressTier maps a raw value to a tier; blank means standard.
func ParseExpressTier(raw string) (ExpressTier, error) {
	tier := ExpressTier(strings.ToLower(strings.TrimSpace(raw)))
	if tier == "" {
		return TierStandard, nil
	}
	if err := tier.Validate(); err != nil {
		return "", err
	}
	return tier, nil
}

func (t ExpressTier) Validate() error {
	switch t {
	case TierStandard, Tier48h, Tier24h:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("expressTier",
		fmt.Errorf("%q is not one of standard, 48h, 24h", string(t)))
}

// TransportMethod is the optional vehicle preference of the sender.
type TransportMethod string

const (
	TransportNone      TransportMethod = ""
	TransportTruck     TransportMethod = "TRUCK"
	TransportMotorbike TransportMethod = "MOTORBIKE"
	TransportBike      TransportMethod = "BIKE"
	TransportCar       TransportMethod = "CAR"
	TransportScooter   TransportMethod = "SCOOTER"
)

// ParseTransportMethod maps a raw value to a transport method; blank means no preference.
func ParseTransportMethod(raw string) (TransportMethod, error) {
	method := TransportMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if err := method.Validate(); err != nil {
		return "", err
	}
	return method, nil
}

func (m TransportMethod) Validate() error {
	switch m {
	case TransportNone, TransportTruck, TransportMotorbike, TransportBike, TransportCar, TransportScooter:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("transportMethod",
		fmt.Errorf("%q is not one of TRUCK, MOTORBIKE, BIKE, CAR, SCOOTER", string(m)))
}

// Photo is the mandatory picture of the parcel. It is either an inline string
// (a data URL or a remote URL) or raw bytes uploaded in the current request.
//
// Its JSON form is the normalized inline string.
type Photo struct {
	Inline      string
	Binary      []byte
	ContentType string
}

// IsEmpty reports whether the photo carries neither inline data nor bytes.
func (p *Photo) IsEmpty() bool {
	return p == nil || (strings.TrimSpace(p.Inline) == "" && len(p.Binary) == 0)
}

// Normalized returns the inline form of the photo: binary content is encoded as a
// base64 data URL. An empty photo normalizes to nil.
func (p *Photo) Normalized() *Photo {
	if p.IsEmpty() {
		return nil
	}
	if p.Inline != "" {
		return &Photo{Inline: p.Inline}
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Photo{
		Inline: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(p.Binary),
	}
}

// MarshalJSON encodes the normalized inline form, or null for an empty photo.
func (p *Photo) MarshalJSON() ([]byte, error) {
	normalized := p.Normalized()
	if normalized == nil {
		return []byte("null"), nil
	}
	return json.Marshal(normalized.Inline)
}

// UnmarshalJSON decodes an inline string.
func (p *Photo) UnmarshalJSON(data []byte) error {
	var inline *string
	if err := json.Unmarshal(data, &inline); err != nil {
		return err
	}
	*p = Photo{}
	if inline != nil {
		p.Inline = *inline
	}
	return nil
}

func (p *Photo) clone() *Photo {
	if p == nil {
		return nil
	}
	c := *p
	if p.Binary != nil {
		c.Binary = append([]byte(nil), p.Binary...)
	}
	return &c
}

// Parcel is the validated description of what is shipped.
// Dimensions are in centimetres, weight in kilograms; a zero dimension is blank.
type Parcel struct {
	Photo             *Photo          `json:"photo"`
	Designation       string          `json:"designation"`
	Description       string          `json:"description"`
	WeightKg          float64         `json:"weightKg"`
	LengthCm          float64         `json:"lengthCm"`
	WidthCm           float64         `json:"widthCm"`
	HeightCm          float64         `json:"heightCm"`
	Fragile           bool            `json:"fragile"`
	Perishable        bool            `json:"perishable"`
	Liquid            bool            `json:"liquid"`
	Insured           bool            `json:"insured"`
	DeclaredValue     float64         `json:"declaredValue"`
	TransportMethod   TransportMethod `json:"transportMethod,omitempty"`
	ExpressTier       ExpressTier     `json:"expressTier"`
	PickupRequested   bool            `json:"pickupRequested"`
	DeliveryRequested bool            `json:"deliveryRequested"`
}

func defaultParcel() Parcel {
	return Parcel{ExpressTier: TierStandard}
}

// Dimensions returns length, width and height with blank values replaced by DefaultDimensionCm.
func (p Parcel) Dimensions() (length, width, height float64) {
	return orDefaultDimension(p.LengthCm), orDefaultDimension(p.WidthCm), orDefaultDimension(p.HeightCm)
}

func orDefaultDimension(v float64) float64 {
	if v <= 0 {
		return DefaultDimensionCm
	}
	return v
}

func (p Parcel) clone() Parcel {
	p.Photo = p.Photo.clone()
	return p
}
