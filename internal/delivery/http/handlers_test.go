package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/parkfinder/backend/internal/repository/postgres"
	"github.com/parkfinder/backend/internal/service"
)

// newTestApp wires the real services against fake upstreams
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":51.5080,"lon":-0.1270,"tags":{"amenity":"fuel","brand":"BP"}},
			{"type":"node","id":2,"lat":51.5100,"lon":-0.1300,"tags":{"amenity":"fuel","brand":"Shell"}},
			{"type":"node","id":3,"lat":51.5120,"lon":-0.1330,"tags":{"amenity":"fuel"}},
			{"type":"way","id":4}
		]}`))
	}))
	t.Cleanup(overpass.Close)

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reverse" {
			w.Write([]byte(`{"address":{"city":"London","country":"United Kingdom","country_code":"gb"}}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(nominatim.Close)

	repo := postgres.NewMemoryRepository()
	places := service.NewNominatimClient(service.NominatimConfig{BaseURL: nominatim.URL, Timeout: time.Second})
	currency := service.NewCurrencyDetector(places, time.Second)
	weather := service.NewWeatherService("")
	search := service.NewSearchService(
		service.NewOverpassClient(overpass.URL, time.Second),
		places,
		service.NewRand(1),
		repo,
		service.SearchConfig{ProviderTimeout: time.Second},
	)
	t.Cleanup(search.WaitBackground)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestContext(5 * time.Second))
	SetupRoutes(app, Services{
		Search:   search,
		Parking:  service.NewParkingService(repo),
		Context:  service.NewContextService(currency, weather),
		Currency: currency,
		Weather:  weather,
		Repo:     repo,
	})
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, target, raw, err)
	}
	return resp.StatusCode, env
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" || body["database"] != "ok" {
		t.Errorf("health: %d %v", resp.StatusCode, body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/api/v1/search/gas_stations?lat=51.5074&lng=-0.1278", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("status %d: %+v", code, env)
	}
	var result struct {
		Category string `json:"category"`
		Items    []struct {
			ID     string `json:"id"`
			Prices struct {
				Currency string `json:"currency"`
				Unit     string `json:"unit"`
			} `json:"prices"`
			Source string `json:"source"`
		} `json:"items"`
		Live     int  `json:"live"`
		Dropped  int  `json:"dropped"`
		Degraded bool `json:"degraded"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Category != "gas_stations" || result.Live != 3 || result.Dropped != 1 || result.Degraded {
		t.Errorf("result: %+v", result)
	}
	if len(result.Items) != 3 || result.Items[0].ID != "node/1" {
		t.Fatalf("items: %+v", result.Items)
	}
	if result.Items[0].Prices.Currency != "GBP" || result.Items[0].Prices.Unit != "liter" {
		t.Errorf("London prices: %+v", result.Items[0].Prices)
	}
}

func TestSearchEndpointErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/search/helipads?lat=51.5&lng=-0.1", http.StatusNotFound},
		{"/api/v1/search/free_parking?lat=51.5", http.StatusBadRequest},
		{"/api/v1/search/free_parking?lat=abc&lng=-0.1", http.StatusBadRequest},
		{"/api/v1/search/free_parking?lat=95&lng=-0.1", http.StatusBadRequest},
		{"/api/v1/search/free_parking?lat=NaN&lng=-0.1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		code, env := do(t, app, http.MethodGet, tt.target, "")
		if code != tt.want || !env.Error || env.Message == "" {
			t.Errorf("%s: status %d, body %+v; want %d", tt.target, code, env, tt.want)
		}
	}
}

func TestDistanceEndpoint(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/api/v1/distance?lat1=51.5074&lng1=-0.1278&lat2=48.8566&lng2=2.3522", "")
	if code != http.StatusOK {
		t.Fatalf("status %d: %+v", code, env)
	}
	var data struct {
		Km float64 `json:"km"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Km < 342.5 || data.Km > 344.5 {
		t.Errorf("London-Paris = %v km", data.Km)
	}
}

func TestPricingAndCurrencyEndpoints(t *testing.T) {
	app := newTestApp(t)

	_, env := do(t, app, http.MethodGet, "/api/v1/pricing?lat=-33.8688&lng=151.2093", "")
	var profile struct {
		Currency string `json:"currency"`
		FuelUnit string `json:"fuelUnit"`
		Petrol   struct {
			Min, Max float64
		} `json:"petrol"`
	}
	json.Unmarshal(env.Data, &profile)
	if profile.Currency != "AUD" || profile.FuelUnit != "liter" || profile.Petrol.Min != 1.45 || profile.Petrol.Max != 1.85 {
		t.Errorf("Sydney profile: %+v", profile)
	}

	_, env = do(t, app, http.MethodGet, "/api/v1/currency?q=Parking%20near%20London%20Bridge&amount=3.5", "")
	var cur map[string]string
	json.Unmarshal(env.Data, &cur)
	if cur["currency"] != "GBP" || cur["source"] != "text" || cur["formatted"] != "£3.50" {
		t.Errorf("text currency: %v", cur)
	}

	_, env = do(t, app, http.MethodGet, "/api/v1/currency?lat=51.5&lng=-0.12", "")
	cur = nil
	json.Unmarshal(env.Data, &cur)
	if cur["currency"] != "GBP" || cur["source"] != "reverse_geocode" {
		t.Errorf("coordinate currency: %v", cur)
	}

	if code, _ := do(t, app, http.MethodGet, "/api/v1/currency?q=x&amount=lots", ""); code != http.StatusBadRequest {
		t.Errorf("bad amount: status %d", code)
	}
}

func TestContextEndpoint(t *testing.T) {
	app := newTestApp(t)

	code, env := do(t, app, http.MethodGet, "/api/v1/context?lat=51.5074&lng=-0.1278", "")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	var data struct {
		Currency string `json:"currency"`
		Pricing  struct {
			Region string `json:"region"`
		} `json:"pricing"`
		Weather *struct {
			IsMock bool `json:"is_mock"`
		} `json:"weather"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Currency != "GBP" || data.Pricing.Region != "united_kingdom" || data.Weather == nil || !data.Weather.IsMock {
		t.Errorf("context: %+v", data)
	}

	code, _ = do(t, app, http.MethodGet, "/api/v1/weather?lat=51.5&lng=-0.12", "")
	if code != http.StatusOK {
		t.Errorf("weather status %d", code)
	}
}

func TestParkingLifecycle(t *testing.T) {
	app := newTestApp(t)

	if code, _ := do(t, app, http.MethodGet, "/api/v1/parking", ""); code != http.StatusNotFound {
		t.Errorf("empty parking: status %d", code)
	}
	if code, _ := do(t, app, http.MethodPut, "/api/v1/parking/note", `{"note":"x"}`); code != http.StatusNotFound {
		t.Errorf("note without parking: status %d", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/parking", `{"lat":51.5}`); code != http.StatusBadRequest {
		t.Errorf("missing lng: status %d", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/parking", `{"lat":51.5,"lng":190}`); code != http.StatusBadRequest {
		t.Errorf("bad lng: status %d", code)
	}

	for i, body := range []string{
		`{"lat":51.50,"lng":-0.12,"note":"first"}`,
		`{"lat":51.51,"lng":-0.12}`,
		`{"lat":51.52,"lng":-0.12}`,
		`{"lat":51.53,"lng":-0.12,"note":"P2 blue zone"}`,
	} {
		if code, env := do(t, app, http.MethodPost, "/api/v1/parking", body); code != http.StatusCreated {
			t.Fatalf("save %d: status %d %+v", i, code, env)
		}
	}

	code, env := do(t, app, http.MethodPut, "/api/v1/parking", `{"lat":51.54,"lng":-0.13}`)
	if code != http.StatusOK {
		t.Fatalf("update: status %d", code)
	}
	var loc struct {
		Lat  float64 `json:"lat"`
		Note string  `json:"note"`
	}
	json.Unmarshal(env.Data, &loc)
	if loc.Lat != 51.54 || loc.Note != "P2 blue zone" {
		t.Errorf("moved location: %+v", loc)
	}

	_, env = do(t, app, http.MethodGet, "/api/v1/parking/history", "")
	if env.Count != 3 {
		t.Errorf("history count %d, want 3", env.Count)
	}

	if code, _ := do(t, app, http.MethodDelete, "/api/v1/parking", ""); code != http.StatusOK {
		t.Errorf("clear: status %d", code)
	}
	if code, _ := do(t, app, http.MethodGet, "/api/v1/parking", ""); code != http.StatusNotFound {
		t.Errorf("after clear: status %d", code)
	}
	_, env = do(t, app, http.MethodGet, "/api/v1/parking/history", "")
	if env.Count != 3 {
		t.Errorf("history after clear %d, want 3", env.Count)
	}
}

func TestFavoritesEndpoints(t *testing.T) {
	app := newTestApp(t)

	code, _ := do(t, app, http.MethodPost, "/api/v1/favorites", `{"id":"way/7","name":"NCP Soho","lat":51.513,"lng":-0.134,"access":"public","distance":0.4,"source":"live"}`)
	if code != http.StatusCreated {
		t.Fatalf("add: status %d", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/api/v1/favorites", `{"name":"no id","lat":1,"lng":1}`); code != http.StatusBadRequest {
		t.Errorf("missing id: status %d", code)
	}

	_, env := do(t, app, http.MethodGet, "/api/v1/favorites", "")
	if env.Count != 1 {
		t.Errorf("favorites count %d", env.Count)
	}

	if code, _ := do(t, app, http.MethodDelete, "/api/v1/favorites/way%2F7", ""); code != http.StatusOK {
		t.Errorf("remove: status %d", code)
	}
	if code, _ := do(t, app, http.MethodDelete, "/api/v1/favorites/way%2F7", ""); code != http.StatusNotFound {
		t.Errorf("remove twice: status %d", code)
	}
}

func TestRequestContextDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContext(50 * time.Millisecond))

	var seen context.Context
	app.Get("/slow", func(c *fiber.Ctx) error {
		seen = c.UserContext()
		if _, ok := seen.Deadline(); !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "no deadline")
		}
		select {
		case <-seen.Done():
			return c.SendStatus(fiber.StatusGatewayTimeout)
		case <-time.After(2 * time.Second):
			return c.SendStatus(fiber.StatusOK)
		}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/slow", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusGatewayTimeout {
		t.Errorf("status %d, want 504", resp.StatusCode)
	}
	if seen == nil || seen.Err() == nil {
		t.Error("request context still live after the handler returned")
	}
}
