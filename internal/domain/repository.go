package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ParkingRepository defines the interface for user-owned persistence.
// The domain defines the interface; postgres and in-memory stores implement it.
type ParkingRepository interface {
	// GetCurrentParking returns ErrNotFound when nothing is saved
	GetCurrentParking(ctx context.Context) (ParkingLocation, error)

	// SetCurrentParking replaces the current parking location
	SetCurrentParking(ctx context.Context, loc ParkingLocation) error

	// ClearCurrentParking removes the current location; history is untouched
	ClearCurrentParking(ctx context.Context) error

	// PushParkingHistory prepends loc and evicts the oldest entries beyond limit
	PushParkingHistory(ctx context.Context, loc ParkingLocation, limit int) error

	// ListParkingHistory returns history newest first
	ListParkingHistory(ctx context.Context) ([]ParkingLocation, error)

	// AddFavorite stores a favorite; re-adding the same ID overwrites it
	AddFavorite(ctx context.Context, fav FavoriteSpot) error

	// RemoveFavorite returns ErrNotFound for unknown IDs
	RemoveFavorite(ctx context.Context, id string) error

	// ListFavorites returns favorites oldest first
	ListFavorites(ctx context.Context) ([]FavoriteSpot, error)

	// SaveSearchLog persists a search audit record
	SaveSearchLog(ctx context.Context, entry SearchLog) error

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
