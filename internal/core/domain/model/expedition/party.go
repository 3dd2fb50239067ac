package expedition

import (
	"strings"

	"expedition/internal/core/domain/model/kernel"
)

// Default location values a fresh draft starts with for both parties.
const (
	DefaultCountry = "Cameroun"
	DefaultRegion  = "Centre"
	DefaultCity    = "Yaoundé"
)

// Party is the sender or the recipient of a shipment: who they are, how to reach them
// and where the parcel is picked up or delivered.
type Party struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	City      string `json:"city"`
	Address   string `json:"address"`
	Landmark  string `json:"landmark"`

	// Coordinates is nil when the location is known only by its address fields.
	Coordinates *kernel.Coordinates `json:"coordinates,omitempty"`

	// UsedCurrentLocation is set when the address fields were filled by reverse geocoding.
	UsedCurrentLocation bool `json:"usedCurrentLocation,omitempty"`
}

func defaultParty() Party {
	return Party{
		Country: DefaultCountry,
		Region:  DefaultRegion,
		City:    DefaultCity,
	}
}

// FullName returns "first last" with blanks trimmed.
func (p Party) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// AddressLabel joins landmark, address, city, region and country with ", ", skipping blanks.
func (p Party) AddressLabel() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{p.Landmark, p.Address, p.City, p.Region, p.Country} {
		if s := strings.TrimSpace(part); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// SameLocation reports whether p and other designate the same place.
// Identity and contact fields are ignored.
func (p Party) SameLocation(other Party) bool {
	if p.AddressLabel() != other.AddressLabel() {
		return false
	}
	switch {
	case p.Coordinates == nil && other.Coordinates == nil:
		return true
	case p.Coordinates == nil || other.Coordinates == nil:
		return false
	default:
		equal, err := p.Coordinates.IsEqual(*other.Coordinates)
		return err == nil && equal
	}
}

func (p Party) clone() Party {
	if p.Coordinates != nil {
		c := *p.Coordinates
		p.Coordinates = &c
	}
	return p
}
