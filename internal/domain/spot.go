package domain

// Category selects what a nearby search looks for
type Category string

const (
	CategoryFreeParking  Category = "free_parking"
	CategoryPaidParking  Category = "paid_parking"
	CategoryGasStations  Category = "gas_stations"
	CategoryEVChargers   Category = "ev_chargers"
	CategoryBusStations  Category = "bus_stations"
	CategoryBicycleRoads Category = "bicycle_roads"
)

// Categories lists every searchable category
var Categories = []Category{
	CategoryFreeParking,
	CategoryPaidParking,
	CategoryGasStations,
	CategoryEVChargers,
	CategoryBusStations,
	CategoryBicycleRoads,
}

// Source records where a search result came from
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
)

const (
	AmenityParking         = "parking"
	AmenityChargingStation = "charging_station"
)

// Spot is a parking place or EV charger.
// At most one pricing shape is set: Price (flat), CarFee+BikeFee (tiered), or none (free).
type Spot struct {
	ID        string  `json:"id"`
	Amenity   string  `json:"amenity"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Name      string  `json:"name"`
	Operator  string  `json:"operator,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
	Surface   string  `json:"surface,omitempty"`
	Access    string  `json:"access"`
	MaxStay   string  `json:"maxstay,omitempty"`

	Price    *float64 `json:"price,omitempty"`
	CarFee   *float64 `json:"carFee,omitempty"`
	BikeFee  *float64 `json:"bikeFee,omitempty"`
	Currency string   `json:"currency,omitempty"`

	// charging_station only
	SocketTypes []string `json:"socketTypes,omitempty"`
	PowerKW     float64  `json:"powerKw,omitempty"`

	Distance float64 `json:"distance"`
	Source   Source  `json:"source"`
}

// IsFree reports whether no pricing field is populated
func (s Spot) IsFree() bool {
	return s.Price == nil && s.CarFee == nil && s.BikeFee == nil
}

// Location returns the spot's coordinate
func (s Spot) Location() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// FuelPrices holds per-unit prices for the three grades
type FuelPrices struct {
	Petrol   float64 `json:"petrol"`
	Diesel   float64 `json:"diesel"`
	Premium  float64 `json:"premium"`
	Unit     string  `json:"unit"`
	Currency string  `json:"currency"`
}

// StationAmenities are the on-site extras of a gas station
type StationAmenities struct {
	Shop    bool `json:"shop"`
	CarWash bool `json:"carWash"`
	Toilets bool `json:"toilets"`
	ATM     bool `json:"atm"`
	AirPump bool `json:"airPump"`
}

// GasStation is always priced
type GasStation struct {
	ID           string           `json:"id"`
	Latitude     float64          `json:"lat"`
	Longitude    float64          `json:"lng"`
	Name         string           `json:"name"`
	Brand        string           `json:"brand,omitempty"`
	OpeningHours string           `json:"openingHours,omitempty"`
	FuelTypes    []string         `json:"fuelTypes"`
	Prices       FuelPrices       `json:"prices"`
	Amenities    StationAmenities `json:"amenities"`
	Distance     float64          `json:"distance"`
	Source       Source           `json:"source"`
}

// Location returns the station's coordinate
func (g GasStation) Location() Coordinate {
	return Coordinate{Latitude: g.Latitude, Longitude: g.Longitude}
}

// BusStation is a stop shown on the map
type BusStation struct {
	ID        string   `json:"id"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	Name      string   `json:"name"`
	Routes    []string `json:"routes,omitempty"`
	Shelter   bool     `json:"shelter"`
	Distance  float64  `json:"distance"`
	Source    Source   `json:"source"`
}

// Location returns the stop's coordinate
func (b BusStation) Location() Coordinate {
	return Coordinate{Latitude: b.Latitude, Longitude: b.Longitude}
}

// BicycleRoad is a cycleway or bike lane, located by its center point
type BicycleRoad struct {
	ID         string   `json:"id"`
	Latitude   float64  `json:"lat"`
	Longitude  float64  `json:"lng"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Surface    string   `json:"surface,omitempty"`
	LengthKm   *float64 `json:"lengthKm,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Distance   float64  `json:"distance"`
	Source     Source   `json:"source"`
}

// Location returns the road's center coordinate
func (b BicycleRoad) Location() Coordinate {
	return Coordinate{Latitude: b.Latitude, Longitude: b.Longitude}
}

// RecordID and DistanceKm let search code sort and dedupe any record type

func (s Spot) RecordID() string    { return s.ID }
func (s Spot) DistanceKm() float64 { return s.Distance }

func (g GasStation) RecordID() string    { return g.ID }
func (g GasStation) DistanceKm() float64 { return g.Distance }

func (b BusStation) RecordID() string    { return b.ID }
func (b BusStation) DistanceKm() float64 { return b.Distance }

func (b BicycleRoad) RecordID() string    { return b.ID }
func (b BicycleRoad) DistanceKm() float64 { return b.Distance }
