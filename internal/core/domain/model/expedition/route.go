package expedition

import (
	"encoding/json"
	"math"
)

// Route is the resolved journey between the pickup and the delivery locations.
// A zero DistanceKm means the route has not been resolved.
type Route struct {
	DepartureLabel  string          `json:"departureLabel"`
	ArrivalLabel    string          `json:"arrivalLabel"`
	DistanceKm      float64         `json:"distanceKm"`
	DurationMinutes float64         `json:"durationMinutes"`
	PathGeometry    json.RawMessage `json:"pathGeometry,omitempty"`
}

// IsResolved reports whether the route carries a positive distance.
func (r Route) IsResolved() bool {
	return r.DistanceKm > 0
}

// RoundDistanceKm converts a distance in metres to kilometres rounded to two decimals.
func RoundDistanceKm(metres float64) float64 {
	return math.Round(metres/1000*100) / 100
}

// RoundDurationMinutes converts a duration in seconds to whole minutes.
func RoundDurationMinutes(seconds float64) float64 {
	return math.Round(seconds / 60)
}

func (r Route) clone() Route {
	if r.PathGeometry != nil {
		r.PathGeometry = append(json.RawMessage(nil), r.PathGeometry...)
	}
	return r
}

// Signature is the sender's handwritten signature, usually a PNG data URL.
type Signature struct {
	ImageData *string `json:"imageData"`
}

// IsPresent reports whether image data has been captured.
func (s Signature) IsPresent() bool {
	return s.ImageData != nil && *s.ImageData != ""
}

func (s Signature) clone() Signature {
	if s.ImageData != nil {
		v := *s.ImageData
		s.ImageData = &v
	}
	return s
}
