// Package geocode resolves free-text addresses to coordinates using the
// Nominatim search API.
package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the address does not resolve to any location
var ErrNotFound = fmt.Errorf("address not found")

// Geocoder resolves an address to latitude/longitude
type Geocoder interface {
	Geocode(address string) (lat, lng float64, err error)
}

// Config holds the geocoder settings
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// NominatimGeocoder implements Geocoder against the Nominatim search endpoint
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewNominatimGeocoder creates a new Nominatim client
func NewNominatimGeocoder(config Config) *NominatimGeocoder {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address. Returns ErrNotFound when the service has no
// match for it.
func (g *NominatimGeocoder) Geocode(address string) (float64, float64, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	req, err := http.NewRequest(http.MethodGet, g.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create geocoding request: %w", err)
	}
	// Nominatim's usage policy requires an identifying user agent
	req.Header.Set("User-Agent", "stayease-pg-management/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in geocoding response: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in geocoding response: %w", err)
	}

	return lat, lng, nil
}
