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
	"golang.org/x/time/rate"
)

// NominatimConfig configures the place search / reverse-geocoding client
type NominatimConfig struct {
	BaseURL        string
	UserAgent      string
	RequestsPerSec float64 // <= 0 disables limiting
	Timeout        time.Duration
}

// NominatimClient talks to an OSM Nominatim instance
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatimClient creates a new Nominatim client
func NewNominatimClient(cfg NominatimConfig) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "parkfinder-backend/1.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1)
	}

	return &NominatimClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// Address is the address breakdown of a Nominatim result
type Address struct {
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Locality returns the most specific settlement name available
func (a Address) Locality() string {
	for _, v := range []string{a.City, a.Town, a.Village, a.Suburb} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Place is one /search hit. Nominatim encodes coordinates as strings.
type Place struct {
	PlaceID     int64   `json:"place_id"`
	OSMType     string  `json:"osm_type"`
	OSMID       int64   `json:"osm_id"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Address     Address `json:"address"`
}

// Search runs a free-text query bounded to a box around near
func (n *NominatimClient) Search(ctx context.Context, query string, near domain.Coordinate, radiusKm float64, limit int) ([]Place, error) {
	// one degree of latitude is ~111 km
	delta := radiusKm / 111.0
	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {fmt.Sprintf("%d", limit)},
		"bounded":        {"1"},
		"viewbox": {fmt.Sprintf("%f,%f,%f,%f",
			near.Longitude-delta, near.Latitude+delta,
			near.Longitude+delta, near.Latitude-delta)},
	}

	var places []Place
	if err := n.get(ctx, "/search", params, &places); err != nil {
		return nil, err
	}
	return places, nil
}

// Reverse returns the address at a coordinate
func (n *NominatimClient) Reverse(ctx context.Context, c domain.Coordinate) (Address, error) {
	params := url.Values{
		"lat":            {fmt.Sprintf("%f", c.Latitude)},
		"lon":            {fmt.Sprintf("%f", c.Longitude)},
		"format":         {"json"},
		"addressdetails": {"1"},
		"zoom":           {"10"},
	}

	var data struct {
		Error   string   `json:"error"`
		Address *Address `json:"address"`
	}
	if err := n.get(ctx, "/reverse", params, &data); err != nil {
		return Address{}, err
	}
	if data.Error != "" || data.Address == nil {
		return Address{}, fmt.Errorf("nominatim: reverse geocode returned no address: %q", data.Error)
	}
	return *data.Address, nil
}

func (n *NominatimClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("nominatim: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("nominatim: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim: %w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim: %w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nominatim: %w: failed to decode response: %v", ErrProviderUnavailable, err)
	}
	return nil
}
