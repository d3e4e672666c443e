package postgres

import (
	"context"
	"sync"

	"github.com/parkfinder/backend/internal/domain"
)

// MemoryRepository implements domain.ParkingRepository in process memory.
// Used when no database is reachable and in tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	current   *domain.ParkingLocation
	history   []domain.ParkingLocation // newest first
	favorites []domain.FavoriteSpot
	searches  []domain.SearchLog
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// GetCurrentParking returns the saved location
func (r *MemoryRepository) GetCurrentParking(ctx context.Context) (domain.ParkingLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return domain.ParkingLocation{}, domain.ErrNotFound
	}
	return *r.current, nil
}

// SetCurrentParking replaces the saved location
func (r *MemoryRepository) SetCurrentParking(ctx context.Context, loc domain.ParkingLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &loc
	return nil
}

// ClearCurrentParking drops the saved location
func (r *MemoryRepository) ClearCurrentParking(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	return nil
}

// PushParkingHistory prepends loc and evicts the oldest beyond limit
func (r *MemoryRepository) PushParkingHistory(ctx context.Context, loc domain.ParkingLocation, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append([]domain.ParkingLocation{loc}, r.history...)
	if limit > 0 && len(r.history) > limit {
		r.history = r.history[:limit]
	}
	return nil
}

// ListParkingHistory returns a copy of the history, newest first
func (r *MemoryRepository) ListParkingHistory(ctx context.Context) ([]domain.ParkingLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ParkingLocation, len(r.history))
	copy(out, r.history)
	return out, nil
}

// AddFavorite stores fav, overwriting an existing entry with the same ID in place
func (r *MemoryRepository) AddFavorite(ctx context.Context, fav domain.FavoriteSpot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.favorites {
		if r.favorites[i].ID == fav.ID {
			r.favorites[i] = fav
			return nil
		}
	}
	r.favorites = append(r.favorites, fav)
	return nil
}

// RemoveFavorite deletes a favorite by ID
func (r *MemoryRepository) RemoveFavorite(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.favorites {
		if r.favorites[i].ID == id {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ListFavorites returns a copy of the favorites, oldest first
func (r *MemoryRepository) ListFavorites(ctx context.Context) ([]domain.FavoriteSpot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FavoriteSpot, len(r.favorites))
	copy(out, r.favorites)
	return out, nil
}

// SaveSearchLog appends an audit entry
func (r *MemoryRepository) SaveSearchLog(ctx context.Context, entry domain.SearchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, entry)
	return nil
}

// SearchLogs returns the recorded search audit entries
func (r *MemoryRepository) SearchLogs() []domain.SearchLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.SearchLog, len(r.searches))
	copy(out, r.searches)
	return out
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}
