package http

import (
	"encoding/json"
	"strings"

	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/expedition"
)

// Decimal is a numeric form field. It accepts a JSON number or a string so that
// values typed by the user ("2,5") reach the domain parser untouched.
type Decimal string

func (d *Decimal) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Decimal(n.String())
	return nil
}

type PartyRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Country   string   `json:"country"`
	Region    string   `json:"region"`
	City      string   `json:"city"`
	Address   string   `json:"address"`
	Landmark  string   `json:"landmark"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r PartyRequest) input() expedition.PartyInput {
	return expedition.PartyInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Email:     r.Email,
		Country:   r.Country,
		Region:    r.Region,
		City:      r.City,
		Address:   r.Address,
		Landmark:  r.Landmark,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type SenderRequest struct {
	PartyRequest
	UseCurrentLocation bool `json:"useCurrentLocation"`
}

type CreateSessionRequest struct {
	// SenderProfile prefills the sender stage of the new draft.
	SenderProfile *PartyRequest `json:"senderProfile"`
}

type ParcelRequest struct {
	Photo             string  `json:"photo"`
	Designation       string  `json:"designation"`
	Description       string  `json:"description"`
	Weight            Decimal `json:"weight"`
	Length            Decimal `json:"length"`
	Width             Decimal `json:"width"`
	Height            Decimal `json:"height"`
	Fragile           bool    `json:"fragile"`
	Perishable        bool    `json:"perishable"`
	Liquid            bool    `json:"liquid"`
	Insured           bool    `json:"insured"`
	DeclaredValue     Decimal `json:"declaredValue"`
	TransportMethod   string  `json:"transportMethod"`
	ExpressTier       string  `json:"expressTier"`
	PickupRequested   bool    `json:"pickupRequested"`
	DeliveryRequested bool    `json:"deliveryRequested"`
}

func (r ParcelRequest) input() expedition.ParcelInput {
	in := expedition.ParcelInput{
		Designation:       r.Designation,
		Description:       r.Description,
		Weight:            string(r.Weight),
		Length:            string(r.Length),
		Width:             string(r.Width),
		Height:            string(r.Height),
		Fragile:           r.Fragile,
		Perishable:        r.Perishable,
		Liquid:            r.Liquid,
		Insured:           r.Insured,
		DeclaredValue:     string(r.DeclaredValue),
		TransportMethod:   r.TransportMethod,
		ExpressTier:       r.ExpressTier,
		PickupRequested:   r.PickupRequested,
		DeliveryRequested: r.DeliveryRequested,
	}
	if strings.TrimSpace(r.Photo) != "" {
		in.Photo = &expedition.Photo{Inline: r.Photo}
	}
	return in
}

type SignatureRequest struct {
	ImageData string `json:"imageData"`
}

type PaymentRequest struct {
	Method      string `json:"method"`
	Operator    string `json:"operator"`
	MobilePhone string `json:"mobilePhone"`
}

func (r PaymentRequest) input() expedition.PaymentInput {
	return expedition.PaymentInput{
		Method:      r.Method,
		Operator:    r.Operator,
		MobilePhone: r.MobilePhone,
	}
}

type QuoteRequest struct {
	Package       *ParcelRequest `json:"package"`
	DistanceKm    float64        `json:"distanceKm"`
	PaymentMethod string         `json:"paymentMethod"`
}

type QuoteResponse struct {
	BasePrice          *int64  `json:"basePrice"`
	TravelPrice        int64   `json:"travelPrice"`
	OperatorFee        int64   `json:"operatorFee"`
	TotalPrice         *int64  `json:"totalPrice"`
	VolumetricWeightKg float64 `json:"volumetricWeightKg"`
	BillableWeightKg   float64 `json:"billableWeightKg"`
}

func newQuoteResponse(r queries.GetQuoteQueryResponse) QuoteResponse {
	return QuoteResponse{
		BasePrice:          r.BasePrice,
		TravelPrice:        r.TravelPrice,
		OperatorFee:        r.OperatorFee,
		TotalPrice:         r.TotalPrice,
		VolumetricWeightKg: r.VolumetricWeightKg,
		BillableWeightKg:   r.BillableWeightKg,
	}
}

// SessionResponse is the state of a wizard session after an operation.
type SessionResponse struct {
	SessionID  string              `json:"sessionId"`
	Restored   bool                `json:"restored"`
	MemoryOnly bool                `json:"memoryOnly"`
	Draft      expedition.Snapshot `json:"draft"`
}

func newSessionResponse(c *wizard.Controller, draft *expedition.Draft) SessionResponse {
	return SessionResponse{
		SessionID:  c.Session().String(),
		Restored:   c.Restored(),
		MemoryOnly: c.MemoryOnly(),
		Draft:      draft.Snapshot(),
	}
}

type ErrorResponse struct {
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Session   *SessionResponse  `json:"session,omitempty"`
}
