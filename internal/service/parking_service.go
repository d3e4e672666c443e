package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parkfinder/backend/internal/domain"
)

// ParkingService manages the saved car location, its history and favorites
type ParkingService struct {
	repo ParkingRepository
	now  func() time.Time
}

// NewParkingService creates a new parking service
func NewParkingService(repo ParkingRepository) *ParkingService {
	return &ParkingService{repo: repo, now: time.Now}
}

// Current returns the saved location or domain.ErrNotFound
func (s *ParkingService) Current(ctx context.Context) (domain.ParkingLocation, error) {
	return s.repo.GetCurrentParking(ctx)
}

// Save stores a new current location and records it in the bounded history
func (s *ParkingService) Save(ctx context.Context, c domain.Coordinate, note string) (domain.ParkingLocation, error) {
	if err := c.Validate(); err != nil {
		return domain.ParkingLocation{}, err
	}

	loc := domain.ParkingLocation{
		ID:        uuid.NewString(),
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Note:      strings.TrimSpace(note),
		SavedAt:   s.now().UTC(),
	}
	if err := s.repo.SetCurrentParking(ctx, loc); err != nil {
		return domain.ParkingLocation{}, fmt.Errorf("parking: save: %w", err)
	}
	if err := s.repo.PushParkingHistory(ctx, loc, domain.MaxParkingHistory); err != nil {
		return domain.ParkingLocation{}, fmt.Errorf("parking: history: %w", err)
	}
	return loc, nil
}

// UpdatePosition moves the pin (a new map click) and keeps the existing note
func (s *ParkingService) UpdatePosition(ctx context.Context, c domain.Coordinate) (domain.ParkingLocation, error) {
	note := ""
	current, err := s.repo.GetCurrentParking(ctx)
	switch {
	case err == nil:
		note = current.Note
	case !errors.Is(err, domain.ErrNotFound):
		return domain.ParkingLocation{}, fmt.Errorf("parking: update: %w", err)
	}
	return s.Save(ctx, c, note)
}

// UpdateNote edits the note of the current location
func (s *ParkingService) UpdateNote(ctx context.Context, note string) (domain.ParkingLocation, error) {
	current, err := s.repo.GetCurrentParking(ctx)
	if err != nil {
		return domain.ParkingLocation{}, err
	}
	current.Note = strings.TrimSpace(note)
	if err := s.repo.SetCurrentParking(ctx, current); err != nil {
		return domain.ParkingLocation{}, fmt.Errorf("parking: update note: %w", err)
	}
	return current, nil
}

// Clear forgets the current location; history survives
func (s *ParkingService) Clear(ctx context.Context) error {
	return s.repo.ClearCurrentParking(ctx)
}

// History returns up to domain.MaxParkingHistory locations, newest first
func (s *ParkingService) History(ctx context.Context) ([]domain.ParkingLocation, error) {
	return s.repo.ListParkingHistory(ctx)
}

// AddFavorite copies a spot into the favorites list
func (s *ParkingService) AddFavorite(ctx context.Context, spot domain.Spot) (domain.FavoriteSpot, error) {
	if strings.TrimSpace(spot.ID) == "" {
		return domain.FavoriteSpot{}, ErrMissingSpotID
	}
	if err := spot.Location().Validate(); err != nil {
		return domain.FavoriteSpot{}, err
	}

	fav := domain.FavoriteSpot{
		ID:        spot.ID,
		Name:      spot.Name,
		Latitude:  spot.Latitude,
		Longitude: spot.Longitude,
		SavedAt:   s.now().UTC(),
	}
	if err := s.repo.AddFavorite(ctx, fav); err != nil {
		return domain.FavoriteSpot{}, fmt.Errorf("parking: add favorite: %w", err)
	}
	return fav, nil
}

// RemoveFavorite un-favorites a spot
func (s *ParkingService) RemoveFavorite(ctx context.Context, id string) error {
	return s.repo.RemoveFavorite(ctx, id)
}

// Favorites lists favorites oldest first
func (s *ParkingService) Favorites(ctx context.Context) ([]domain.FavoriteSpot, error) {
	return s.repo.ListFavorites(ctx)
}
