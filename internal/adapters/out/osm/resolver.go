package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

type osrmRoute struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

// Profile returns the OSRM profile for a transport preference.
func Profile(hint expedition.TransportMethod) string {
	if hint == expedition.TransportBike {
		return "cycling"
	}
	return "driving"
}

// Resolve locates both waypoints concurrently, then asks OSRM for the route between them.
func (c *Client) Resolve(
	ctx context.Context,
	origin, destination ports.Waypoint,
	hint expedition.TransportMethod,
) (expedition.Route, error) {
	var from, to kernel.Coordinates

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = c.locate(gctx, origin)
		return err
	})
	g.Go(func() (err error) {
		to, err = c.locate(gctx, destination)
		return err
	})
	if err := g.Wait(); err != nil {
		return expedition.Route{}, err
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%s;%s", c.osrm, Profile(hint), from.LonLat(), to.LonLat())
	query := url.Values{
		"overview":   {"full"},
		"geometries": {"geojson"},
	}
	var resp osrmResponse
	if _, err := c.getJSON(ctx, endpoint, query, &resp); err != nil {
		return expedition.Route{}, ports.NewResolutionError("routing failed", err)
	}
	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return expedition.Route{}, ports.NewResolutionError("no route found",
			fmt.Errorf("osrm code %q: %s", resp.Code, resp.Message))
	}

	best := resp.Routes[0]
	return expedition.Route{
		DepartureLabel:  origin.Label,
		ArrivalLabel:    destination.Label,
		DistanceKm:      expedition.RoundDistanceKm(best.Distance),
		DurationMinutes: expedition.RoundDurationMinutes(best.Duration),
		PathGeometry:    best.Geometry,
	}, nil
}

func (c *Client) locate(ctx context.Context, w ports.Waypoint) (kernel.Coordinates, error) {
	if w.Coordinates != nil {
		return *w.Coordinates, nil
	}
	return c.Search(ctx, w.Label)
}
