package domain

import "time"

// Weather represents current conditions at a search location
type Weather struct {
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	WindSpeed   float64   `json:"wind_speed"`
	Visibility  int       `json:"visibility"`
	Pressure    int       `json:"pressure"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Timestamp   time.Time `json:"timestamp"`
	IsMock      bool      `json:"is_mock"`
}

// LocationContext is everything the map header shows for a point
type LocationContext struct {
	Location Coordinate     `json:"location"`
	Pricing  PricingProfile `json:"pricing"`
	Currency string         `json:"currency"`
	Weather  *Weather       `json:"weather,omitempty"`
}
