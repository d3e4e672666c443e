package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkfinder/backend/internal/domain"
)

// PostgresRepository implements domain.ParkingRepository.
// The app is single-user, so the current location lives in one fixed row.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const schema = `
	CREATE TABLE IF NOT EXISTS parking_current (
		slot      SMALLINT PRIMARY KEY DEFAULT 1,
		id        TEXT             NOT NULL,
		lat       DOUBLE PRECISION NOT NULL,
		lng       DOUBLE PRECISION NOT NULL,
		note      TEXT             NOT NULL DEFAULT '',
		saved_at  TIMESTAMPTZ      NOT NULL
	);

	CREATE TABLE IF NOT EXISTS parking_history (
		seq       BIGSERIAL PRIMARY KEY,
		id        TEXT             UNIQUE NOT NULL,
		lat       DOUBLE PRECISION NOT NULL,
		lng       DOUBLE PRECISION NOT NULL,
		note      TEXT             NOT NULL DEFAULT '',
		saved_at  TIMESTAMPTZ      NOT NULL
	);

	CREATE TABLE IF NOT EXISTS favorite_spots (
		seq       BIGSERIAL PRIMARY KEY,
		id        TEXT             UNIQUE NOT NULL,
		name      TEXT             NOT NULL DEFAULT '',
		lat       DOUBLE PRECISION NOT NULL,
		lng       DOUBLE PRECISION NOT NULL,
		saved_at  TIMESTAMPTZ      NOT NULL
	);

	CREATE TABLE IF NOT EXISTS search_logs (
		id         BIGSERIAL PRIMARY KEY,
		category   TEXT             NOT NULL,
		lat        DOUBLE PRECISION NOT NULL,
		lng        DOUBLE PRECISION NOT NULL,
		live       INTEGER          NOT NULL,
		synthetic  INTEGER          NOT NULL,
		degraded   BOOLEAN          NOT NULL,
		created_at TIMESTAMPTZ      NOT NULL
	);
`

// Migrate creates the tables if they do not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// GetCurrentParking loads the saved location
func (r *PostgresRepository) GetCurrentParking(ctx context.Context) (domain.ParkingLocation, error) {
	query := `SELECT id, lat, lng, note, saved_at FROM parking_current WHERE slot = 1`

	var loc domain.ParkingLocation
	err := r.pool.QueryRow(ctx, query).Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Note, &loc.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ParkingLocation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ParkingLocation{}, fmt.Errorf("postgres: failed to load parking location: %w", err)
	}
	return loc, nil
}

// SetCurrentParking upserts the saved location
func (r *PostgresRepository) SetCurrentParking(ctx context.Context, loc domain.ParkingLocation) error {
	query := `
		INSERT INTO parking_current (slot, id, lat, lng, note, saved_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (slot) DO UPDATE
		SET id = EXCLUDED.id, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
		    note = EXCLUDED.note, saved_at = EXCLUDED.saved_at
	`

	_, err := r.pool.Exec(ctx, query, loc.ID, loc.Latitude, loc.Longitude, loc.Note, loc.SavedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to save parking location: %w", err)
	}
	return nil
}

// ClearCurrentParking deletes the saved location
func (r *PostgresRepository) ClearCurrentParking(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM parking_current WHERE slot = 1`); err != nil {
		return fmt.Errorf("postgres: failed to clear parking location: %w", err)
	}
	return nil
}

// PushParkingHistory inserts loc and trims the table to the newest limit rows
func (r *PostgresRepository) PushParkingHistory(ctx context.Context, loc domain.ParkingLocation, limit int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin history tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO parking_history (id, lat, lng, note, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, loc.ID, loc.Latitude, loc.Longitude, loc.Note, loc.SavedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert history: %w", err)
	}

	if limit > 0 {
		_, err = tx.Exec(ctx, `
			DELETE FROM parking_history
			WHERE seq NOT IN (SELECT seq FROM parking_history ORDER BY seq DESC LIMIT $1)
		`, limit)
		if err != nil {
			return fmt.Errorf("postgres: failed to trim history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit history: %w", err)
	}
	return nil
}

// ListParkingHistory returns history newest first
func (r *PostgresRepository) ListParkingHistory(ctx context.Context) ([]domain.ParkingLocation, error) {
	query := `SELECT id, lat, lng, note, saved_at FROM parking_history ORDER BY seq DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query parking history: %w", err)
	}
	defer rows.Close()

	results := []domain.ParkingLocation{}
	for rows.Next() {
		var loc domain.ParkingLocation
		if err := rows.Scan(&loc.ID, &loc.Latitude, &loc.Longitude, &loc.Note, &loc.SavedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan history row: %w", err)
		}
		results = append(results, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read history rows: %w", err)
	}

	return results, nil
}

// AddFavorite upserts a favorite, keeping its original position
func (r *PostgresRepository) AddFavorite(ctx context.Context, fav domain.FavoriteSpot) error {
	query := `
		INSERT INTO favorite_spots (id, name, lat, lng, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng, saved_at = EXCLUDED.saved_at
	`

	if _, err := r.pool.Exec(ctx, query, fav.ID, fav.Name, fav.Latitude, fav.Longitude, fav.SavedAt); err != nil {
		return fmt.Errorf("postgres: failed to save favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite by ID
func (r *PostgresRepository) RemoveFavorite(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorite_spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFavorites returns favorites oldest first
func (r *PostgresRepository) ListFavorites(ctx context.Context) ([]domain.FavoriteSpot, error) {
	query := `SELECT id, name, lat, lng, saved_at FROM favorite_spots ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query favorites: %w", err)
	}
	defer rows.Close()

	results := []domain.FavoriteSpot{}
	for rows.Next() {
		var f domain.FavoriteSpot
		if err := rows.Scan(&f.ID, &f.Name, &f.Latitude, &f.Longitude, &f.SavedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan favorite row: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read favorite rows: %w", err)
	}

	return results, nil
}

// SaveSearchLog persists a search audit entry
func (r *PostgresRepository) SaveSearchLog(ctx context.Context, entry domain.SearchLog) error {
	query := `
		INSERT INTO search_logs (category, lat, lng, live, synthetic, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		string(entry.Category), entry.Latitude, entry.Longitude,
		entry.Live, entry.Synthetic, entry.Degraded, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save search log: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
