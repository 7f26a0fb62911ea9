package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// ListAdminIDs retrieves the IDs of all admin users.
func (r *userRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE is_admin = TRUE`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query admin users")
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan admin user row")
			return nil, fmt.Errorf("failed to scan admin user: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating admin user rows")
		return nil, fmt.Errorf("error iterating admin users: %w", err)
	}

	return ids, nil
}

// IsAdmin reports whether the user holds the admin role.
func (r *userRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var isAdmin bool
	err := r.pool.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&isAdmin)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user role")
		return false, fmt.Errorf("failed to query user role: %w", err)
	}
	return isAdmin, nil
}

// locationRepository implements the LocationRepository interface using PostgreSQL.
type locationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLocationRepository creates a new PostgreSQL-backed location repository.
func NewLocationRepository(pool *pgxpool.Pool, logger zerolog.Logger) LocationRepository {
	return &locationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "location").Logger(),
	}
}

// GetByID retrieves a location by its ID.
func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var loc model.Location
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, fee FROM locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name, &loc.Fee)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("location_id", id.String()).Msg("location not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("location_id", id.String()).Msg("failed to query location")
		return nil, fmt.Errorf("failed to query location: %w", err)
	}

	return &loc, nil
}
