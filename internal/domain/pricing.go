package domain

const (
	FuelUnitLiter  = "liter"
	FuelUnitGallon = "gallon"
)

// PriceRange is an inclusive [Min, Max] price band
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range, bounds included
func (r PriceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// PricingProfile is derived from a coordinate on every request and never stored
type PricingProfile struct {
	Region   string     `json:"region"`
	Currency string     `json:"currency"`
	FuelUnit string     `json:"fuelUnit"`
	CarFee   PriceRange `json:"carFee"`
	BikeFee  PriceRange `json:"bikeFee"`
	Petrol   PriceRange `json:"petrol"`
	Diesel   PriceRange `json:"diesel"`
	Premium  PriceRange `json:"premium"`
}
