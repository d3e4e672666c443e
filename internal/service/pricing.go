package service

import (
	"github.com/parkfinder/backend/internal/domain"
	"github.com/parkfinder/backend/pkg/utils"
)

// regionBox is one bounding box of the pricing classifier
type regionBox struct {
	minLat, maxLat float64
	minLng, maxLng float64
	profile        domain.PricingProfile
}

func (b regionBox) contains(c domain.Coordinate) bool {
	return c.Latitude >= b.minLat && c.Latitude <= b.maxLat &&
		c.Longitude >= b.minLng && c.Longitude <= b.maxLng
}

// regionBoxes are tested in order and the first match wins.
// The UK sits inside the Europe box, so it must come first. The UK box also
// covers most of Ireland, so the Republic is carved out ahead of it: the south
// below the border counties, and Donegal and Sligo west of Fermanagh.
var regionBoxes = []regionBox{
	{
		minLat: 6, maxLat: 36, minLng: 68, maxLng: 98,
		profile: domain.PricingProfile{
			Region:   "india",
			Currency: "INR",
			FuelUnit: domain.FuelUnitLiter,
			CarFee:   domain.PriceRange{Min: 20, Max: 100},
			BikeFee:  domain.PriceRange{Min: 10, Max: 30},
			Petrol:   domain.PriceRange{Min: 94, Max: 110},
			Diesel:   domain.PriceRange{Min: 87, Max: 98},
			Premium:  domain.PriceRange{Min: 100, Max: 120},
		},
	},
	{
		minLat: -44, maxLat: -10, minLng: 112, maxLng: 154,
		profile: domain.PricingProfile{
			Region:   "australia",
			Currency: "AUD",
			FuelUnit: domain.FuelUnitLiter,
			CarFee:   domain.PriceRange{Min: 3, Max: 12},
			BikeFee:  domain.PriceRange{Min: 1, Max: 4},
			Petrol:   domain.PriceRange{Min: 1.45, Max: 1.85},
			Diesel:   domain.PriceRange{Min: 1.55, Max: 1.95},
			Premium:  domain.PriceRange{Min: 1.7, Max: 2.1},
		},
	},
	{minLat: 51.3, maxLat: 54.0, minLng: -10.7, maxLng: -6.0, profile: europeProfile()},
	{minLat: 54.0, maxLat: 55.5, minLng: -10.7, maxLng: -8.2, profile: europeProfile()},
	{
		minLat: 49.9, maxLat: 60.9, minLng: -8.2, maxLng: 1.8,
		profile: domain.PricingProfile{
			Region:   "united_kingdom",
			Currency: "GBP",
			FuelUnit: domain.FuelUnitLiter,
			CarFee:   domain.PriceRange{Min: 1.5, Max: 5},
			BikeFee:  domain.PriceRange{Min: 0.5, Max: 1.5},
			Petrol:   domain.PriceRange{Min: 1.35, Max: 1.55},
			Diesel:   domain.PriceRange{Min: 1.4, Max: 1.6},
			Premium:  domain.PriceRange{Min: 1.5, Max: 1.75},
		},
	},
	{
		minLat: 35, maxLat: 71, minLng: -10, maxLng: 40,
		profile: europeProfile(),
	},
	{
		minLat: 15, maxLat: 72, minLng: -170, maxLng: -50,
		profile: northAmericaProfile("north_america"),
	},
}

func europeProfile() domain.PricingProfile {
	return domain.PricingProfile{
		Region:   "europe",
		Currency: "EUR",
		FuelUnit: domain.FuelUnitLiter,
		CarFee:   domain.PriceRange{Min: 1, Max: 4},
		BikeFee:  domain.PriceRange{Min: 0.5, Max: 1.5},
		Petrol:   domain.PriceRange{Min: 1.6, Max: 2},
		Diesel:   domain.PriceRange{Min: 1.5, Max: 1.85},
		Premium:  domain.PriceRange{Min: 1.75, Max: 2.2},
	}
}

func northAmericaProfile(region string) domain.PricingProfile {
	return domain.PricingProfile{
		Region:   region,
		Currency: "USD",
		FuelUnit: domain.FuelUnitGallon,
		CarFee:   domain.PriceRange{Min: 1.5, Max: 6},
		BikeFee:  domain.PriceRange{Min: 0.5, Max: 2},
		Petrol:   domain.PriceRange{Min: 3, Max: 4.5},
		Diesel:   domain.PriceRange{Min: 3.5, Max: 5},
		Premium:  domain.PriceRange{Min: 3.8, Max: 5.2},
	}
}

// ClassifyRegion maps a coordinate to its pricing profile.
// Coordinates outside every box get the USD/gallon default.
func ClassifyRegion(c domain.Coordinate) domain.PricingProfile {
	for _, box := range regionBoxes {
		if box.contains(c) {
			return box.profile
		}
	}
	return northAmericaProfile("default")
}

// SamplePrice draws a price uniformly from r, rounded to cents and kept inside r
func SamplePrice(rng Rand, r domain.PriceRange) float64 {
	v := utils.RoundTo(uniform(rng, r.Min, r.Max), 2)
	return utils.Clamp(v, r.Min, r.Max)
}

// SampleParkingFees returns hourly car and bike fees for the profile
func SampleParkingFees(rng Rand, p domain.PricingProfile) (car, bike float64) {
	return SamplePrice(rng, p.CarFee), SamplePrice(rng, p.BikeFee)
}

// SampleFuelPrices returns per-unit prices for all three grades
func SampleFuelPrices(rng Rand, p domain.PricingProfile) domain.FuelPrices {
	return domain.FuelPrices{
		Petrol:   SamplePrice(rng, p.Petrol),
		Diesel:   SamplePrice(rng, p.Diesel),
		Premium:  SamplePrice(rng, p.Premium),
		Unit:     p.FuelUnit,
		Currency: p.Currency,
	}
}
