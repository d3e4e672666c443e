package domain

import "time"

// MaxParkingHistory bounds how many previous parking locations are kept
const MaxParkingHistory = 3

// ParkingLocation is the user's saved "my car is here" pin
type ParkingLocation struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Note      string    `json:"note,omitempty"`
	SavedAt   time.Time `json:"timestamp"`
}

// FavoriteSpot is a copy of a Spot the user starred
type FavoriteSpot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	SavedAt   time.Time `json:"savedAt"`
}

// SearchLog is an audit record of one nearby search
type SearchLog struct {
	Category  Category  `json:"category"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Live      int       `json:"live"`
	Synthetic int       `json:"synthetic"`
	Degraded  bool      `json:"degraded"`
	CreatedAt time.Time `json:"created_at"`
}
