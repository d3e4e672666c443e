package domain

import (
	"errors"
	"fmt"

	"github.com/parkfinder/backend/pkg/utils"
)

// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range coordinates
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS84 point in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Validate rejects coordinates outside -90..90 / -180..180 or non-finite values
func (c Coordinate) Validate() error {
	if !utils.IsFinite(c.Latitude) || !utils.IsFinite(c.Longitude) {
		return fmt.Errorf("%w: non-finite value (%v, %v)", ErrInvalidCoordinate, c.Latitude, c.Longitude)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// DistanceTo returns the Haversine distance in kilometers.
// Both points must already be valid.
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return utils.Haversine(c.Latitude, c.Longitude, other.Latitude, other.Longitude)
}

// Distance returns the great-circle distance between a and b in kilometers
func Distance(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return a.DistanceTo(b), nil
}
