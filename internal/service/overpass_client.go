package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parkfinder/backend/internal/domain"
)

// OverpassClient runs Overpass QL queries
type OverpassClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewOverpassClient creates a new Overpass client
func NewOverpassClient(endpoint string, timeout time.Duration) *OverpassClient {
	if endpoint == "" {
		endpoint = "https://overpass-api.de/api/interpreter"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OverpassClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LatLon is the "center" object Overpass returns for ways and relations
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OverpassElement is a raw node/way/relation; any field may be missing
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *LatLon           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// OverpassResponse is the JSON envelope of an Overpass answer
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// BuildOverpassQuery unions each filter statement around origin.
// Filters look like `nwr["amenity"="fuel"]`.
func BuildOverpassQuery(filters []string, origin domain.Coordinate, radiusMeters int) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, f := range filters {
		fmt.Fprintf(&b, "%s(around:%d,%.6f,%.6f);", f, radiusMeters, origin.Latitude, origin.Longitude)
	}
	b.WriteString(");out center tags;")
	return b.String()
}

// Query posts an Overpass QL query and returns its elements
func (o *OverpassClient) Query(ctx context.Context, query string) ([]OverpassElement, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("overpass: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: %w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass: %w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var out OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("overpass: %w: failed to decode response: %v", ErrProviderUnavailable, err)
	}
	return out.Elements, nil
}
