package utils

import (
	"math"
	"testing"
)

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"same point", 51.5074, -0.1278, 51.5074, -0.1278, 0, 1e-9},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 1.0},
		{"new york to los angeles", 40.7128, -74.0060, 34.0522, -118.2437, 3935.7, 5.0},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusKm, 1e-6},
	}

	for _, tt := range tests {
		got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
		if math.Abs(got-tt.want) > tt.tolerance {
			t.Errorf("%s: Haversine = %.3f; want %.3f ± %.3f", tt.name, got, tt.want, tt.tolerance)
		}
	}
}

func TestHaversineSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{40.730610, -73.935242, 28.6139, 77.2090},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{89.9, 10, -89.9, -170},
	}
	for _, p := range pairs {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance for %v: %f vs %f", p, ab, ba)
		}
	}
}

func TestClampAndRound(t *testing.T) {
	if got := Clamp(7, 1.5, 6); got != 6 {
		t.Errorf("Clamp high: got %v", got)
	}
	if got := Clamp(-1, 0, 1); got != 0 {
		t.Errorf("Clamp low: got %v", got)
	}
	if got := RoundTo(1.23456, 2); got != 1.23 {
		t.Errorf("RoundTo: got %v, want 1.23", got)
	}
	if got := Lerp(1.5, 6, 0.5); got != 3.75 {
		t.Errorf("Lerp: got %v, want 3.75", got)
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || IsFinite(math.Inf(-1)) {
		t.Error("non-finite values reported finite")
	}
	if !IsFinite(0) || !IsFinite(-180) {
		t.Error("finite values reported non-finite")
	}
}
