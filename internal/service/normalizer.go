package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/parkfinder/backend/internal/domain"
)

// Normalizer turns raw provider records into domain records.
// Real geodata rarely carries fee amounts, so prices are sampled from the region profile.
type Normalizer struct {
	rng Rand
}

// NewNormalizer creates a normalizer drawing prices from rng
func NewNormalizer(rng Rand) *Normalizer {
	return &Normalizer{rng: rng}
}

// elementLocation prefers direct lat/lon and falls back to the way/relation center
func elementLocation(el OverpassElement) (domain.Coordinate, bool) {
	var c domain.Coordinate
	switch {
	case el.Lat != nil && el.Lon != nil:
		c = domain.Coordinate{Latitude: *el.Lat, Longitude: *el.Lon}
	case el.Center != nil:
		c = domain.Coordinate{Latitude: el.Center.Lat, Longitude: el.Center.Lon}
	default:
		return domain.Coordinate{}, false
	}
	if c.Validate() != nil {
		return domain.Coordinate{}, false
	}
	return c, true
}

func elementID(el OverpassElement) string {
	t := el.Type
	if t == "" {
		t = "node"
	}
	return fmt.Sprintf("%s/%d", t, el.ID)
}

func tagOr(tags map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(tags[key]); v != "" {
		return v
	}
	return fallback
}

func tagYes(tags map[string]string, key string) bool {
	v := strings.ToLower(tags[key])
	return v == "yes" || v == "true" || v == "1"
}

func parseCapacity(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Parking normalizes an amenity=parking element; paid spots get sampled fees
func (n *Normalizer) Parking(el OverpassElement, origin domain.Coordinate, paid bool) (domain.Spot, bool) {
	loc, ok := elementLocation(el)
	if !ok {
		return domain.Spot{}, false
	}

	defaultName := "Free Parking"
	if paid {
		defaultName = "Paid Parking"
	}

	spot := domain.Spot{
		ID:        elementID(el),
		Amenity:   domain.AmenityParking,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Name:      tagOr(el.Tags, "name", defaultName),
		Operator:  el.Tags["operator"],
		Capacity:  parseCapacity(el.Tags["capacity"]),
		Surface:   el.Tags["surface"],
		Access:    tagOr(el.Tags, "access", "public"),
		MaxStay:   el.Tags["maxstay"],
		Distance:  origin.DistanceTo(loc),
		Source:    domain.SourceLive,
	}
	if paid {
		n.applyParkingFees(&spot, loc)
	}
	return spot, true
}

// ParkingPlace normalizes a free-text search hit into a paid parking spot.
// Non-parking hits are rejected.
func (n *Normalizer) ParkingPlace(p Place, origin domain.Coordinate) (domain.Spot, bool) {
	if !strings.Contains(p.Type, "parking") && p.Class != "parking" {
		return domain.Spot{}, false
	}
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lng, errLng := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLng != nil {
		return domain.Spot{}, false
	}
	loc := domain.Coordinate{Latitude: lat, Longitude: lng}
	if loc.Validate() != nil {
		return domain.Spot{}, false
	}

	name := strings.TrimSpace(strings.SplitN(p.DisplayName, ",", 2)[0])
	if name == "" {
		name = "Parking Garage"
	}

	id := fmt.Sprintf("place/%d", p.PlaceID)
	if p.OSMType != "" && p.OSMID != 0 {
		id = fmt.Sprintf("%s/%d", p.OSMType, p.OSMID)
	}

	spot := domain.Spot{
		ID:        id,
		Amenity:   domain.AmenityParking,
		Latitude:  lat,
		Longitude: lng,
		Name:      name,
		Access:    "public",
		Distance:  origin.DistanceTo(loc),
		Source:    domain.SourceLive,
	}
	n.applyParkingFees(&spot, loc)
	return spot, true
}

func (n *Normalizer) applyParkingFees(spot *domain.Spot, loc domain.Coordinate) {
	profile := ClassifyRegion(loc)
	car, bike := SampleParkingFees(n.rng, profile)
	spot.CarFee = &car
	spot.BikeFee = &bike
	spot.Currency = profile.Currency
}

// GasStation normalizes an amenity=fuel element
func (n *Normalizer) GasStation(el OverpassElement, origin domain.Coordinate) (domain.GasStation, bool) {
	loc, ok := elementLocation(el)
	if !ok {
		return domain.GasStation{}, false
	}

	brand := el.Tags["brand"]
	fuels := make([]string, 0, 4)
	for k, v := range el.Tags {
		if strings.HasPrefix(k, "fuel:") && strings.EqualFold(v, "yes") {
			fuels = append(fuels, strings.TrimPrefix(k, "fuel:"))
		}
	}
	sort.Strings(fuels)
	if len(fuels) == 0 {
		fuels = []string{"petrol", "diesel", "premium"}
	}

	shop := el.Tags["shop"]
	return domain.GasStation{
		ID:           elementID(el),
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
		Name:         tagOr(el.Tags, "name", tagOr(el.Tags, "brand", "Gas Station")),
		Brand:        brand,
		OpeningHours: el.Tags["opening_hours"],
		FuelTypes:    fuels,
		Prices:       SampleFuelPrices(n.rng, ClassifyRegion(loc)),
		Amenities: domain.StationAmenities{
			Shop:    shop != "" && shop != "no",
			CarWash: tagYes(el.Tags, "car_wash"),
			Toilets: tagYes(el.Tags, "toilets"),
			ATM:     tagYes(el.Tags, "atm"),
			AirPump: tagYes(el.Tags, "compressed_air"),
		},
		Distance: origin.DistanceTo(loc),
		Source:   domain.SourceLive,
	}, true
}

var socketNames = map[string]string{
	"type1":              "Type 1",
	"type2":              "Type 2",
	"type2_cable":        "Type 2",
	"type2_combo":        "CCS",
	"ccs":                "CCS",
	"chademo":            "CHAdeMO",
	"tesla_supercharger": "Tesla",
	"tesla_destination":  "Tesla",
	"schuko":             "Schuko",
}

// Charger normalizes an amenity=charging_station element
func (n *Normalizer) Charger(el OverpassElement, origin domain.Coordinate) (domain.Spot, bool) {
	loc, ok := elementLocation(el)
	if !ok {
		return domain.Spot{}, false
	}

	seen := make(map[string]bool)
	var sockets []string
	var power float64
	for k, v := range el.Tags {
		if !strings.HasPrefix(k, "socket:") {
			continue
		}
		rest := strings.TrimPrefix(k, "socket:")
		if strings.HasSuffix(rest, ":output") {
			if kw, ok := parsePowerKW(v); ok && kw > power {
				power = kw
			}
			continue
		}
		if strings.Contains(rest, ":") || v == "no" || v == "0" {
			continue
		}
		name, ok := socketNames[rest]
		if !ok {
			name = rest
		}
		if !seen[name] {
			seen[name] = true
			sockets = append(sockets, name)
		}
	}
	sort.Strings(sockets)
	for _, key := range []string{"charging_station:output", "maxpower"} {
		if kw, ok := parsePowerKW(el.Tags[key]); ok && kw > power {
			power = kw
		}
	}

	spot := domain.Spot{
		ID:          elementID(el),
		Amenity:     domain.AmenityChargingStation,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Name:        tagOr(el.Tags, "name", tagOr(el.Tags, "operator", "EV Charging Station")),
		Operator:    el.Tags["operator"],
		Capacity:    parseCapacity(el.Tags["capacity"]),
		Access:      tagOr(el.Tags, "access", "public"),
		SocketTypes: sockets,
		PowerKW:     power,
		Distance:    origin.DistanceTo(loc),
		Source:      domain.SourceLive,
	}
	if tagYes(el.Tags, "fee") {
		profile := ClassifyRegion(loc)
		price := SamplePrice(n.rng, profile.CarFee)
		spot.Price = &price
		spot.Currency = profile.Currency
	}
	return spot, true
}

// parsePowerKW reads values like "50 kW", "22kw", "7400 W" or a bare kW number
func parsePowerKW(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, ";,"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, false
	}

	unit := 1.0
	switch {
	case strings.HasSuffix(s, "kw"):
		s = strings.TrimSuffix(s, "kw")
	case strings.HasSuffix(s, "w"):
		s = strings.TrimSuffix(s, "w")
		unit = 0.001
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * unit, true
}

// BusStation normalizes a highway=bus_stop or bus platform element
func (n *Normalizer) BusStation(el OverpassElement, origin domain.Coordinate) (domain.BusStation, bool) {
	loc, ok := elementLocation(el)
	if !ok {
		return domain.BusStation{}, false
	}

	var routes []string
	for _, r := range strings.Split(el.Tags["route_ref"], ";") {
		if r = strings.TrimSpace(r); r != "" {
			routes = append(routes, r)
		}
	}

	return domain.BusStation{
		ID:        elementID(el),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Name:      tagOr(el.Tags, "name", "Bus Stop"),
		Routes:    routes,
		Shelter:   tagYes(el.Tags, "shelter"),
		Distance:  origin.DistanceTo(loc),
		Source:    domain.SourceLive,
	}, true
}

// BicycleRoad normalizes a cycleway or road with a bike lane
func (n *Normalizer) BicycleRoad(el OverpassElement, origin domain.Coordinate) (domain.BicycleRoad, bool) {
	loc, ok := elementLocation(el)
	if !ok {
		return domain.BicycleRoad{}, false
	}

	kind := "cycleway"
	if el.Tags["highway"] != "cycleway" {
		kind = tagOr(el.Tags, "cycleway", "lane")
	}

	return domain.BicycleRoad{
		ID:        elementID(el),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Name:      tagOr(el.Tags, "name", "Cycle Path"),
		Type:      kind,
		Surface:   el.Tags["surface"],
		Distance:  origin.DistanceTo(loc),
		Source:    domain.SourceLive,
	}, true
}
