// Package geo resolves coordinates to display names. Lookups are
// best-effort; a failed lookup leaves the city name blank.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Geocoder resolves a coordinate pair to a human-readable city name.
type Geocoder interface {
	CityName(ctx context.Context, lat, lng float64) (string, error)
}

// HTTPGeocoder queries an external reverse-geocode service.
type HTTPGeocoder struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGeocoder builds a geocoder for the given endpoint.
func NewHTTPGeocoder(endpoint string) *HTTPGeocoder {
	return &HTTPGeocoder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// CityName performs one reverse-geocode round trip.
func (g *HTTPGeocoder) CityName(ctx context.Context, lat, lng float64) (string, error) {
	requestURL := fmt.Sprintf("%s?lat=%s&lng=%s",
		g.endpoint,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lng)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach geocode service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode service returned status: %d", resp.StatusCode)
	}

	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}
	return body.City, nil
}
