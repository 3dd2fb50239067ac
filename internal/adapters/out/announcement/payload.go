package announcement

import (
	"strings"

	"expedition/internal/core/domain/model/expedition"
)

// GuestClientID is sent when the session has no account.
const GuestClientID = "00000000-0000-0000-0000-000000000000"

const (
	addressPrimary   = "PRIMARY"
	addressSecondary = "SECONDARY"
	unknownStreet    = "Adresse non précisée"
	cameroonPrefix   = "+237"
)

// Address is a pickup or delivery address of an announcement.
type Address struct {
	Street      string  `json:"street"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	Country     string  `json:"country"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Packet describes the parcel of an announcement.
type Packet struct {
	Designation  string  `json:"designation"`
	Weight       float64 `json:"weight"`
	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Thickness    float64 `json:"thickness"`
	Fragile      bool    `json:"fragile"`
	IsPerishable bool    `json:"isPerishable"`
	Description  string  `json:"description,omitempty"`
	PhotoPacket  string  `json:"photoPacket,omitempty"`
}

// Payload is the body of POST /api/announcements.
type Payload struct {
	ClientID    string `json:"clientId"`
	Title       string `json:"title"`
	Description string `json:"description"`

	RecipientFirstName string `json:"recipientFirstName"`
	RecipientLastName  string `json:"recipientLastName"`
	RecipientEmail     string `json:"recipientEmail"`
	RecipientPhone     string `json:"recipientPhone"`

	ShipperFirstName string `json:"shipperFirstName"`
	ShipperLastName  string `json:"shipperLastName"`
	ShipperEmail     string `json:"shipperEmail"`
	ShipperPhone     string `json:"shipperPhone"`

	Amount          int64   `json:"amount"`
	SignatureURL    *string `json:"signatureUrl"`
	PaymentMethod   string  `json:"paymentMethod"`
	TransportMethod string  `json:"transportMethod"`
	Distance        float64 `json:"distance"`
	Duration        float64 `json:"duration"`

	PickupAddress   Address `json:"pickupAddress"`
	DeliveryAddress Address `json:"deliveryAddress"`
	Packet          Packet  `json:"packet"`
}

// NewPayload maps a draft to the announcement the backend creates. A blank clientID
// submits as guest.
func NewPayload(clientID string, draft *expedition.Draft) Payload {
	if strings.TrimSpace(clientID) == "" {
		clientID = GuestClientID
	}
	sender, recipient := draft.Sender(), draft.Recipient()
	parcel, route := draft.Parcel(), draft.Route()

	title := "Envoi de " + parcel.Designation
	description := parcel.Description
	if description == "" {
		description = title
	}

	var photo string
	if normalized := parcel.Photo.Normalized(); normalized != nil {
		photo = normalized.Inline
	}

	return Payload{
		ClientID:    clientID,
		Title:       title,
		Description: description,

		RecipientFirstName: recipient.FirstName,
		RecipientLastName:  recipient.LastName,
		RecipientEmail:     recipient.Email,
		RecipientPhone:     internationalPhone(recipient.Phone),

		ShipperFirstName: sender.FirstName,
		ShipperLastName:  sender.LastName,
		ShipperEmail:     sender.Email,
		ShipperPhone:     expedition.StripSpaces(sender.Phone),

		Amount:          draft.Pricing().Total(),
		SignatureURL:    draft.Signature().ImageData,
		PaymentMethod:   string(draft.Payment().Method),
		TransportMethod: string(parcel.TransportMethod),
		Distance:        route.DistanceKm,
		Duration:        route.DurationMinutes,

		PickupAddress:   toAddress(sender, addressPrimary),
		DeliveryAddress: toAddress(recipient, addressSecondary),
		Packet: Packet{
			Designation:  parcel.Designation,
			Weight:       parcel.WeightKg,
			Length:       parcel.LengthCm,
			Width:        parcel.WidthCm,
			Height:       parcel.HeightCm,
			Thickness:    parcel.HeightCm,
			Fragile:      parcel.Fragile,
			IsPerishable: parcel.Perishable,
			Description:  parcel.Description,
			PhotoPacket:  photo,
		},
	}
}

func toAddress(p expedition.Party, kind string) Address {
	street := p.Address
	if strings.TrimSpace(street) == "" {
		street = unknownStreet
	}
	a := Address{
		Street:      street,
		City:        p.City,
		District:    p.Region,
		Country:     p.Country,
		Description: p.Landmark,
		Type:        kind,
	}
	if p.Coordinates != nil {
		a.Latitude = p.Coordinates.Latitude()
		a.Longitude = p.Coordinates.Longitude()
	}
	return a
}

func internationalPhone(raw string) string {
	phone := expedition.StripSpaces(raw)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return cameroonPrefix + phone
}
