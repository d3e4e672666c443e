package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/parkfinder/backend/internal/domain"
)

func TestBuildOverpassQuery(t *testing.T) {
	q := BuildOverpassQuery([]string{`node["highway"="bus_stop"]`, `nwr["public_transport"="platform"]`},
		domain.Coordinate{Latitude: 51.5, Longitude: -0.12}, 1500)

	want := `[out:json][timeout:25];(` +
		`node["highway"="bus_stop"](around:1500,51.500000,-0.120000);` +
		`nwr["public_transport"="platform"](around:1500,51.500000,-0.120000);` +
		`);out center tags;`
	if q != want {
		t.Errorf("query:\n got %s\nwant %s", q, want)
	}
}

func TestOverpassClientQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s, want POST", r.Method)
		}
		gotQuery = r.FormValue("data")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements":[
			{"type":"node","id":1,"lat":40.71,"lon":-74.0,"tags":{"amenity":"fuel"}},
			{"type":"way","id":2,"center":{"lat":40.72,"lon":-74.01}},
			{"type":"relation","id":3}
		]}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, time.Second)
	els, err := client.Query(context.Background(), "[out:json];node;out;")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if gotQuery != "[out:json];node;out;" {
		t.Errorf("server received %q", gotQuery)
	}
	if len(els) != 3 {
		t.Fatalf("got %d elements, want 3", len(els))
	}
	if els[0].Lat == nil || *els[0].Lat != 40.71 || els[0].Tags["amenity"] != "fuel" {
		t.Errorf("node decoded wrong: %+v", els[0])
	}
	if els[1].Center == nil || els[1].Center.Lon != -74.01 || els[1].Lat != nil {
		t.Errorf("way decoded wrong: %+v", els[1])
	}
	if els[2].Lat != nil || els[2].Center != nil {
		t.Errorf("relation should carry no location: %+v", els[2])
	}
}

func TestOverpassClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "busy", http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>rate limited</html>`))
		}},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(tt.handler)
		_, err := NewOverpassClient(srv.URL, time.Second).Query(context.Background(), "q")
		srv.Close()
		if !errors.Is(err, ErrProviderUnavailable) {
			t.Errorf("%s: got %v, want ErrProviderUnavailable", tt.name, err)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	if _, err := NewOverpassClient(srv.URL, time.Second).Query(context.Background(), "q"); !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("unreachable host: got %v", err)
	}
}

func TestNominatimSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "car park" || q.Get("bounded") != "1" || q.Get("limit") != "5" || q.Get("format") != "json" {
			t.Errorf("unexpected params: %v", q)
		}
		if parts := strings.Split(q.Get("viewbox"), ","); len(parts) != 4 {
			t.Errorf("viewbox %q", q.Get("viewbox"))
		}
		if ua := r.Header.Get("User-Agent"); ua != "parkfinder-test" {
			t.Errorf("User-Agent %q", ua)
		}
		w.Write([]byte(`[{"place_id":10,"osm_type":"way","osm_id":99,"display_name":"NCP Car Park, London",
			"lat":"51.5080","lon":"-0.1200","class":"amenity","type":"parking",
			"address":{"city":"London","country":"United Kingdom","country_code":"gb"}}]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimConfig{BaseURL: srv.URL + "/", UserAgent: "parkfinder-test", Timeout: time.Second})
	places, err := client.Search(context.Background(), "car park", domain.Coordinate{Latitude: 51.5, Longitude: -0.12}, 2, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("got %d places", len(places))
	}
	p := places[0]
	if p.OSMID != 99 || p.Lat != "51.5080" || p.Type != "parking" || p.Address.Locality() != "London" {
		t.Errorf("decoded place: %+v", p)
	}
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "0.000000" {
			w.Write([]byte(`{"error":"Unable to geocode"}`))
			return
		}
		w.Write([]byte(`{"address":{"town":"Bondi","state":"New South Wales","country":"Australia","country_code":"au"}}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimConfig{BaseURL: srv.URL, Timeout: time.Second})
	addr, err := client.Reverse(context.Background(), domain.Coordinate{Latitude: -33.89, Longitude: 151.27})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if addr.Locality() != "Bondi" || addr.CountryCode != "au" {
		t.Errorf("address: %+v", addr)
	}

	if _, err := client.Reverse(context.Background(), domain.Coordinate{}); err == nil {
		t.Error("expected error for ocean coordinate")
	}
}

func TestNominatimRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimConfig{BaseURL: srv.URL, RequestsPerSec: 0.01, Timeout: time.Second})
	near := domain.Coordinate{Latitude: 1, Longitude: 1}
	if _, err := client.Search(context.Background(), "a", near, 1, 1); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Search(ctx, "b", near, 1, 1); err == nil {
		t.Error("second call should be throttled past its deadline")
	}
}

func TestNominatimFailureIsProviderUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewNominatimClient(NominatimConfig{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Search(context.Background(), "x", domain.Coordinate{}, 1, 1)
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("got %v, want ErrProviderUnavailable", err)
	}
}
