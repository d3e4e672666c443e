package service

import (
	"sort"
	"strconv"

	"github.com/parkfinder/backend/internal/domain"
	"github.com/parkfinder/backend/pkg/utils"
)

// jitter spread per category, in degrees (0.01 deg is roughly 1.1 km)
const (
	spreadFreeParking = 0.01
	spreadPaidParking = 0.008
	spreadGasStation  = 0.02
	spreadCharger     = 0.015
	spreadBusStation  = 0.006
	spreadBicycleRoad = 0.012
)

var (
	freeParkingNames = []string{
		"Street Parking", "Public Parking Lot", "Community Center Parking",
		"Park & Ride", "Library Parking", "Shopping Center Lot",
		"Residential Street Parking", "Park Entrance Parking",
	}
	paidParkingNames = []string{
		"City Center Garage", "Downtown Parking Plaza", "Metro Park & Pay",
		"Central Station Car Park", "Mall Multi-Storey", "Riverside Parking",
		"Airport Express Parking", "Business District Garage",
	}
	parkingOperators = []string{"City Parking", "ParkSmart", "EasyPark", "Q-Park", "Impark"}
	surfaces         = []string{"asphalt", "paved", "concrete", "gravel"}
	maxStays         = []string{"2 hours", "4 hours", "8 hours", "24 hours"}

	fuelBrands   = []string{"Shell", "BP", "ExxonMobil", "Chevron", "TotalEnergies", "Texaco", "Indian Oil", "Ampol"}
	openingHours = []string{"24/7", "Mo-Su 06:00-22:00", "Mo-Sa 07:00-21:00"}

	chargerOperators = []string{"Tesla Supercharger", "ChargePoint", "Ionity", "EVgo", "Electrify America", "Pod Point"}
	socketTypes      = []string{"Type 2", "CCS", "CHAdeMO", "Tesla", "Type 1"}
	chargerPowers    = []float64{7.4, 11, 22, 50, 150, 250}

	busStopNames = []string{
		"Main Street", "Central Station", "Market Square", "City Hall",
		"Hospital", "University", "Park Avenue", "Library",
	}

	bicycleRoadNames = []string{
		"Riverside Cycle Path", "Greenway Trail", "City Bike Lane",
		"Park Loop", "Canal Towpath", "Harbour Cycleway",
	}
	bicycleRoadTypes = []string{"cycleway", "lane", "track"}
	difficulties     = []string{"easy", "moderate", "hard"}
)

// Synthesizer fabricates plausible records around an origin when live data is short.
// The origin must be valid.
type Synthesizer struct {
	rng Rand
}

// NewSynthesizer creates a synthesizer drawing from rng
func NewSynthesizer(rng Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

func (s *Synthesizer) jitter(origin domain.Coordinate, spread float64) domain.Coordinate {
	return domain.Coordinate{
		Latitude:  utils.Clamp(origin.Latitude+uniform(s.rng, -spread, spread), -90, 90),
		Longitude: utils.Clamp(origin.Longitude+uniform(s.rng, -spread, spread), -180, 180),
	}
}

func (s *Synthesizer) parkingSpot(origin domain.Coordinate, i int, spread float64, names []string) domain.Spot {
	loc := s.jitter(origin, spread)
	return domain.Spot{
		ID:        newID(s.rng),
		Amenity:   domain.AmenityParking,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Name:      names[i%len(names)],
		Surface:   pick(s.rng, surfaces),
		Access:    "public",
		Distance:  origin.DistanceTo(loc),
		Source:    domain.SourceSynthetic,
	}
}

// FreeParking returns exactly count fee-less parking spots
func (s *Synthesizer) FreeParking(origin domain.Coordinate, count int) []domain.Spot {
	spots := make([]domain.Spot, 0, max(count, 0))
	for i := 0; i < count; i++ {
		spot := s.parkingSpot(origin, i, spreadFreeParking, freeParkingNames)
		capacity := 10 + s.rng.Intn(91)
		spot.Capacity = &capacity
		spots = append(spots, spot)
	}
	sortByDistance(spots)
	return spots
}

// PaidParking returns exactly count spots with car and bike fees
func (s *Synthesizer) PaidParking(origin domain.Coordinate, count int) []domain.Spot {
	spots := make([]domain.Spot, 0, max(count, 0))
	for i := 0; i < count; i++ {
		spot := s.parkingSpot(origin, i, spreadPaidParking, paidParkingNames)
		capacity := 50 + s.rng.Intn(451)
		spot.Capacity = &capacity
		spot.Operator = pick(s.rng, parkingOperators)
		spot.MaxStay = pick(s.rng, maxStays)

		profile := ClassifyRegion(spot.Location())
		car, bike := SampleParkingFees(s.rng, profile)
		spot.CarFee = &car
		spot.BikeFee = &bike
		spot.Currency = profile.Currency
		spots = append(spots, spot)
	}
	sortByDistance(spots)
	return spots
}

// GasStations returns exactly count priced stations
func (s *Synthesizer) GasStations(origin domain.Coordinate, count int) []domain.GasStation {
	stations := make([]domain.GasStation, 0, max(count, 0))
	for i := 0; i < count; i++ {
		loc := s.jitter(origin, spreadGasStation)
		brand := fuelBrands[i%len(fuelBrands)]
		fuels := []string{"diesel", "petrol", "premium"}
		if chance(s.rng, 0.3) {
			fuels = append(fuels, "lpg")
		}
		stations = append(stations, domain.GasStation{
			ID:           newID(s.rng),
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			Name:         brand,
			Brand:        brand,
			OpeningHours: pick(s.rng, openingHours),
			FuelTypes:    fuels,
			Prices:       SampleFuelPrices(s.rng, ClassifyRegion(loc)),
			Amenities: domain.StationAmenities{
				Shop:    chance(s.rng, 0.7),
				CarWash: chance(s.rng, 0.4),
				Toilets: chance(s.rng, 0.6),
				ATM:     chance(s.rng, 0.5),
				AirPump: chance(s.rng, 0.8),
			},
			Distance: origin.DistanceTo(loc),
			Source:   domain.SourceSynthetic,
		})
	}
	sortByDistance(stations)
	return stations
}

// Chargers returns exactly count charging stations
func (s *Synthesizer) Chargers(origin domain.Coordinate, count int) []domain.Spot {
	spots := make([]domain.Spot, 0, max(count, 0))
	for i := 0; i < count; i++ {
		loc := s.jitter(origin, spreadCharger)
		operator := chargerOperators[i%len(chargerOperators)]

		sockets := make([]string, 0, 3)
		seen := make(map[string]bool)
		for n := 1 + s.rng.Intn(3); len(sockets) < n; {
			t := pick(s.rng, socketTypes)
			if !seen[t] {
				seen[t] = true
				sockets = append(sockets, t)
			}
		}
		capacity := 2 + s.rng.Intn(9)

		spot := domain.Spot{
			ID:          newID(s.rng),
			Amenity:     domain.AmenityChargingStation,
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
			Name:        operator + " Charging",
			Operator:    operator,
			Capacity:    &capacity,
			Access:      "public",
			SocketTypes: sockets,
			PowerKW:     pick(s.rng, chargerPowers),
			Distance:    origin.DistanceTo(loc),
			Source:      domain.SourceSynthetic,
		}
		if chance(s.rng, 0.7) {
			profile := ClassifyRegion(loc)
			price := SamplePrice(s.rng, profile.CarFee)
			spot.Price = &price
			spot.Currency = profile.Currency
		}
		spots = append(spots, spot)
	}
	sortByDistance(spots)
	return spots
}

// BusStations returns exactly count stops with one to three routes
func (s *Synthesizer) BusStations(origin domain.Coordinate, count int) []domain.BusStation {
	stops := make([]domain.BusStation, 0, max(count, 0))
	for i := 0; i < count; i++ {
		loc := s.jitter(origin, spreadBusStation)
		routes := make([]string, 1+s.rng.Intn(3))
		for r := range routes {
			routes[r] = strconv.Itoa(1 + s.rng.Intn(99))
		}
		stops = append(stops, domain.BusStation{
			ID:        newID(s.rng),
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Name:      busStopNames[i%len(busStopNames)],
			Routes:    routes,
			Shelter:   chance(s.rng, 0.6),
			Distance:  origin.DistanceTo(loc),
			Source:    domain.SourceSynthetic,
		})
	}
	sortByDistance(stops)
	return stops
}

// BicycleRoads returns exactly count cycleways with length and difficulty
func (s *Synthesizer) BicycleRoads(origin domain.Coordinate, count int) []domain.BicycleRoad {
	roads := make([]domain.BicycleRoad, 0, max(count, 0))
	for i := 0; i < count; i++ {
		loc := s.jitter(origin, spreadBicycleRoad)
		length := utils.RoundTo(uniform(s.rng, 0.3, 5), 1)
		roads = append(roads, domain.BicycleRoad{
			ID:         newID(s.rng),
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			Name:       bicycleRoadNames[i%len(bicycleRoadNames)],
			Type:       pick(s.rng, bicycleRoadTypes),
			Surface:    pick(s.rng, surfaces),
			LengthKm:   &length,
			Difficulty: pick(s.rng, difficulties),
			Distance:   origin.DistanceTo(loc),
			Source:     domain.SourceSynthetic,
		})
	}
	sortByDistance(roads)
	return roads
}

// record is what sorting and deduplication need from any result type
type record interface {
	Location() domain.Coordinate
	RecordID() string
	DistanceKm() float64
}

// sortByDistance orders ascending by distance, then ID, so merge order never matters
func sortByDistance[T record](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].DistanceKm(), items[j].DistanceKm()
		if di != dj {
			return di < dj
		}
		return items[i].RecordID() < items[j].RecordID()
	})
}

// dedupeNearby keeps the first of any records closer than thresholdKm to one already kept
func dedupeNearby[T record](items []T, thresholdKm float64) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if !nearAny(item, kept, thresholdKm) {
			kept = append(kept, item)
		}
	}
	return kept
}

func nearAny[T record](item T, others []T, thresholdKm float64) bool {
	loc := item.Location()
	for _, o := range others {
		if o.Location().DistanceTo(loc) < thresholdKm {
			return true
		}
	}
	return false
}
