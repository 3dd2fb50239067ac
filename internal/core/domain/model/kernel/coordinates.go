package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

const (
	// LatitudeMin is the southern bound of a latitude.
	LatitudeMin = -90.0
	// LatitudeMax is the northern bound of a latitude.
	LatitudeMax = 90.0
	// LongitudeMin is the western bound of a longitude.
	LongitudeMin = -180.0
	// LongitudeMax is the eastern bound of a longitude.
	LongitudeMax = 180.0
)

// ErrCoordinatesAreNotConstructed is returned when a zero-value Coordinates is used.
var ErrCoordinatesAreNotConstructed = errs.NewValueIsRequiredError(
	"coordinates must be created via NewCoordinates")

// Coordinates is a WGS84 point: where a parcel is picked up or delivered, or where
// the sender stands when using the "use my location" shortcut.
//
// Example:
//
//	yaounde, err := kernel.NewCoordinates(3.8480, 11.5021)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(yaounde) // 3.848000,11.502100
type Coordinates struct { //nolint:recvcheck //setters use pointer receivers during construction
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewCoordinates validates both components and builds a Coordinates value.
//
// Returns:
//   - Coordinates: the point
//   - error: ValueIsOutOfRangeError for each component outside its bounds (joined)
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	c := Coordinates{guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setLatitude(latitude), c.setLongitude(longitude)); err != nil {
		return Coordinates{}, err
	}

	return c, nil
}

// Validate reports whether the value went through NewCoordinates.
func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesAreNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (c Coordinates) Latitude() float64 {
	return c.latitude
}

// Longitude returns the longitude in decimal degrees.
func (c Coordinates) Longitude() float64 {
	return c.longitude
}

// IsEqual compares two constructed points.
func (c Coordinates) IsEqual(other Coordinates) (bool, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return c.latitude == other.latitude && c.longitude == other.longitude, nil
}

// String renders "lat,lon" with six decimals, which is also the form geocoders accept.
func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.latitude, c.longitude)
}

// LonLat renders "lon,lat", the order routing engines expect in their URLs.
func (c Coordinates) LonLat() string {
	return strconv.FormatFloat(c.longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.latitude, 'f', -1, 64)
}

type coordinatesJSON struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// MarshalJSON encodes the point as {"lat":..,"lon":..}.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(coordinatesJSON{Latitude: c.latitude, Longitude: c.longitude})
}

// UnmarshalJSON decodes {"lat":..,"lon":..} through NewCoordinates.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw coordinatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := NewCoordinates(raw.Latitude, raw.Longitude)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Coordinates) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}
	c.latitude = latitude
	return nil
}

func (c *Coordinates) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}
	c.longitude = longitude
	return nil
}
