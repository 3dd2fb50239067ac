package osm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"
)

type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Quarter       string `json:"quarter"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// Reverse looks up the address at position.
func (c *Client) Reverse(ctx context.Context, position kernel.Coordinates) (ports.Place, error) {
	if err := position.Validate(); err != nil {
		return ports.Place{}, ports.NewResolutionError("invalid position", err)
	}

	query := url.Values{
		"lat":            {strconv.FormatFloat(position.Latitude(), 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(position.Longitude(), 'f', -1, 64)},
		"format":         {"json"},
		"addressdetails": {"1"},
		"zoom":           {"18"},
	}
	var place nominatimPlace
	if _, err := c.getJSON(ctx, c.nominatim+"/reverse", query, &place); err != nil {
		return ports.Place{}, ports.NewResolutionError("reverse geocoding failed", err)
	}
	if place.Error != "" {
		return ports.Place{}, ports.NewResolutionError("no address at "+position.String(), fmt.Errorf("%s", place.Error))
	}

	return toPlace(place), nil
}

// Search returns the position of the best match for a free-text address.
func (c *Client) Search(ctx context.Context, label string) (kernel.Coordinates, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return kernel.Coordinates{}, ports.NewResolutionError("empty address", nil)
	}

	query := url.Values{
		"q":              {label},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}
	var places []nominatimPlace
	if _, err := c.getJSON(ctx, c.nominatim+"/search", query, &places); err != nil {
		return kernel.Coordinates{}, ports.NewResolutionError("geocoding failed", err)
	}
	if len(places) == 0 {
		return kernel.Coordinates{}, ports.NewResolutionError(fmt.Sprintf("address not found: %s", label), nil)
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return kernel.Coordinates{}, ports.NewResolutionError("geocoder returned an unreadable position", nil)
	}
	position, err := kernel.NewCoordinates(lat, lon)
	if err != nil {
		return kernel.Coordinates{}, ports.NewResolutionError("geocoder returned an invalid position", err)
	}
	return position, nil
}

func toPlace(p nominatimPlace) ports.Place {
	a := p.Address
	street := strings.TrimSpace(strings.Join(nonBlank(a.HouseNumber, a.Road), " "))
	return ports.Place{
		Label:    p.DisplayName,
		Country:  a.Country,
		Region:   a.State,
		City:     firstNonBlank(a.City, a.Town, a.Village),
		Address:  street,
		Landmark: firstNonBlank(a.Neighbourhood, a.Suburb, a.Quarter),
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
