package service

import (
	"errors"

	"github.com/parkfinder/backend/internal/domain"
)

// ParkingRepository is re-exported from domain for convenience
type ParkingRepository = domain.ParkingRepository

var (
	// ErrProviderUnavailable wraps network, non-OK and decode failures of upstream APIs
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnknownCategory is returned for a category outside domain.Categories
	ErrUnknownCategory = errors.New("unknown search category")

	// ErrMissingSpotID is returned when favoriting a spot without an id
	ErrMissingSpotID = errors.New("favorite requires a spot id")
)
