// Package osm resolves routes and addresses with OpenStreetMap services: Nominatim for
// geocoding and OSRM for routing.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"expedition/internal/core/ports"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultOSRMURL      = "https://router.project-osrm.org"

	defaultUserAgent = "expedition/1.0"
	defaultLanguage  = "fr"

	// maxResponseBytes caps decoded bodies; full-overview geometries stay well below it.
	maxResponseBytes = 8 << 20
)

// Config points the client at Nominatim and OSRM instances.
type Config struct {
	NominatimURL   string
	OSRMURL        string
	UserAgent      string
	AcceptLanguage string
}

// Client implements ports.RouteResolver and ports.ReverseGeocoder.
type Client struct {
	http      *http.Client
	nominatim string
	osrm      string
	userAgent string
	language  string
}

var (
	_ ports.RouteResolver   = (*Client)(nil)
	_ ports.ReverseGeocoder = (*Client)(nil)
)

// NewClient creates a client. A nil httpClient gets a traced default client; blank
// config fields fall back to the public OpenStreetMap endpoints.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	c := &Client{
		http:      httpClient,
		nominatim: strings.TrimRight(orDefault(cfg.NominatimURL, DefaultNominatimURL), "/"),
		osrm:      strings.TrimRight(orDefault(cfg.OSRMURL, DefaultOSRMURL), "/"),
		userAgent: orDefault(cfg.UserAgent, defaultUserAgent),
		language:  orDefault(cfg.AcceptLanguage, defaultLanguage),
	}
	return c
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// getJSON decodes the JSON body of a GET into out. It does not decode non-2xx bodies.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) (int, error) {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.language)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
