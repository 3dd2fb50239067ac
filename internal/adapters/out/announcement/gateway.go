// Package announcement submits finalized drafts to the shipment backend, which records
// them as announcements and answers with the tracking id.
package announcement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	announcementsPath = "/api/announcements"
	maxErrorBodyBytes = 64 << 10
)

var _ ports.SubmissionGateway = (*Gateway)(nil)

// Gateway implements ports.SubmissionGateway over the backend REST API.
type Gateway struct {
	http     *http.Client
	endpoint string
}

// NewGateway creates a gateway for the backend at baseURL. A nil httpClient gets a
// traced default client.
func NewGateway(baseURL string, httpClient *http.Client) (*Gateway, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("submission base url")
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Gateway{http: httpClient, endpoint: baseURL + announcementsPath}, nil
}

type createdAnnouncement struct {
	ID string `json:"id"`
}

type backendError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit posts the announcement and returns the id the backend assigned to it.
func (g *Gateway) Submit(ctx context.Context, request ports.SubmissionRequest) (string, error) {
	if request.Draft == nil {
		return "", ports.NewSubmissionError(0, "nothing to submit", errs.NewValueIsRequiredError("draft"))
	}

	body, err := json.Marshal(NewPayload(request.ClientID, request.Draft))
	if err != nil {
		return "", ports.NewSubmissionError(0, "encode announcement", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ports.NewSubmissionError(0, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", ports.NewSubmissionError(0, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", ports.NewSubmissionError(resp.StatusCode, readErrorMessage(resp), nil)
	}

	var created createdAnnouncement
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", ports.NewSubmissionError(resp.StatusCode, "unreadable response", err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", ports.NewSubmissionError(resp.StatusCode, "response has no announcement id",
			errors.New("empty tracking id"))
	}
	return created.ID, nil
}

func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var decoded backendError
	if json.Unmarshal(raw, &decoded) == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("backend answered %s", resp.Status)
}
