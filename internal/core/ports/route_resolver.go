package ports

import (
	"context"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
)

// Waypoint is one end of a route: a free-text label and, when known, its coordinates.
// Coordinates take precedence over the label.
type Waypoint struct {
	Label       string
	Coordinates *kernel.Coordinates
}

// RouteResolver computes the route between two waypoints.
type RouteResolver interface {
	// Resolve returns the route from origin to destination with distance in km (2 decimals)
	// and duration in minutes. hint selects the routing profile.
	// Returns *ResolutionError when a waypoint cannot be located or no route exists.
	Resolve(ctx context.Context, origin, destination Waypoint, hint expedition.TransportMethod) (expedition.Route, error)
}

// Place is the address found for a position.
type Place struct {
	Label    string
	Country  string
	Region   string
	City     string
	Address  string
	Landmark string
}

// ReverseGeocoder turns a position into an address; used by the "use my location" shortcut.
type ReverseGeocoder interface {
	// Reverse returns the address at position.
	// Returns *ResolutionError when the lookup fails.
	Reverse(ctx context.Context, position kernel.Coordinates) (Place, error)
}
