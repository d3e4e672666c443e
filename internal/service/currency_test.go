package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parkfinder/backend/internal/domain"
)

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Parking near London Bridge", "GBP"},
		{"Sydney, New South Wales, Australia", "AUD"},
		{"Cardiff, Wales", "GBP"},
		{"Indianapolis, Indiana", "USD"},
		{"Connaught Place, New Delhi", "INR"},
		{"MUMBAI central", "INR"},
		{"Gare du Nord, Paris", "EUR"},
		{"Tokyo Station", "JPY"},
		{"USA parking", "USD"},
		{"somewhere unknown", "USD"},
		{"", "USD"},
		{"   ", "USD"},
	}

	for _, tt := range tests {
		if got := DetectCurrency(tt.text); got != tt.want {
			t.Errorf("DetectCurrency(%q) = %s; want %s", tt.text, got, tt.want)
		}
	}
}

func TestDetectCurrencyMatchesWholeWords(t *testing.T) {
	for _, text := range []string{"Parking near Lausanne", "Busan station parking", "Jerusalem old city", "South America"} {
		if code, ok := matchCurrency(text); ok {
			t.Errorf("matchCurrency(%q) = %s; want no match", text, code)
		}
	}
	if code, _ := matchCurrency("Indiana Dunes"); code != "USD" {
		t.Errorf("Indiana Dunes matched %s", code)
	}
}

func TestCurrencyKeysLongestFirst(t *testing.T) {
	for i := 1; i < len(currencyKeys); i++ {
		if len(currencyKeys[i]) > len(currencyKeys[i-1]) {
			t.Fatalf("key %q longer than preceding %q", currencyKeys[i], currencyKeys[i-1])
		}
	}
}

type fakeGeocoder struct {
	addr  Address
	err   error
	calls int
}

func (f *fakeGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (Address, error) {
	f.calls++
	return f.addr, f.err
}

type blockingGeocoder struct{}

func (blockingGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (Address, error) {
	<-ctx.Done()
	return Address{}, ctx.Err()
}

func TestDetectFromCoordinate(t *testing.T) {
	ctx := context.Background()
	sydney := domain.Coordinate{Latitude: -33.8688, Longitude: 151.2093}

	t.Run("matches address names", func(t *testing.T) {
		geo := &fakeGeocoder{addr: Address{City: "Sydney", State: "New South Wales", Country: "Australia", CountryCode: "au"}}
		d := NewCurrencyDetector(geo, time.Second)
		if got := d.DetectFromCoordinate(ctx, sydney); got != "AUD" {
			t.Errorf("got %s, want AUD", got)
		}
	})

	t.Run("falls back to country code", func(t *testing.T) {
		geo := &fakeGeocoder{addr: Address{Village: "Ballyvaughan", Country: "Éire", CountryCode: "IE"}}
		d := NewCurrencyDetector(geo, time.Second)
		if got := d.DetectFromCoordinate(ctx, domain.Coordinate{Latitude: 53.1, Longitude: -9.1}); got != "EUR" {
			t.Errorf("got %s, want EUR", got)
		}
	})

	t.Run("provider error yields default", func(t *testing.T) {
		geo := &fakeGeocoder{err: errors.New("boom")}
		d := NewCurrencyDetector(geo, time.Second)
		if got := d.DetectFromCoordinate(ctx, sydney); got != DefaultCurrency {
			t.Errorf("got %s, want %s", got, DefaultCurrency)
		}
	})

	t.Run("invalid coordinate skips provider", func(t *testing.T) {
		geo := &fakeGeocoder{addr: Address{Country: "Australia"}}
		d := NewCurrencyDetector(geo, time.Second)
		if got := d.DetectFromCoordinate(ctx, domain.Coordinate{Latitude: 95, Longitude: 0}); got != DefaultCurrency {
			t.Errorf("got %s, want %s", got, DefaultCurrency)
		}
		if geo.calls != 0 {
			t.Errorf("geocoder called %d times for invalid coordinate", geo.calls)
		}
	})

	t.Run("nil geocoder yields default", func(t *testing.T) {
		d := NewCurrencyDetector(nil, time.Second)
		if got := d.DetectFromCoordinate(ctx, sydney); got != DefaultCurrency {
			t.Errorf("got %s, want %s", got, DefaultCurrency)
		}
	})

	t.Run("timeout yields default", func(t *testing.T) {
		d := NewCurrencyDetector(blockingGeocoder{}, 20*time.Millisecond)
		if got := d.DetectFromCoordinate(ctx, sydney); got != DefaultCurrency {
			t.Errorf("got %s, want %s", got, DefaultCurrency)
		}
	})
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{3.5, "USD", "$3.50"},
		{1.999, "GBP", "£2.00"},
		{94.25, "INR", "₹94.25"},
		{250, "JPY", "¥250"},
		{4.2, "CHF", "CHF 4.20"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%v, %s) = %q; want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}
