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

// notificationRepository implements the NotificationRepository interface using PostgreSQL.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

// InsertMany persists a set of notification rows in a single batch.
func (r *notificationRepository) InsertMany(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (id, message, type, related_entity_id, user_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(query, n.ID, n.Message, n.Type, n.RelatedEntityID, n.UserID, n.IsRead, n.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(notifications); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).
				Str("user_id", notifications[i].UserID.String()).
				Msg("failed to insert notification")
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(notifications)).
		Msg("notifications inserted")

	return nil
}

// ListUnread retrieves the most recent unread notifications of a user.
func (r *notificationRepository) ListUnread(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, message, type, related_entity_id, user_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Msg("failed to query notifications")
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.Message, &n.Type, &n.RelatedEntityID, &n.UserID, &n.IsRead, &n.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan notification row")
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating notification rows")
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a single notification as read.
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("notification_id", id.String()).Msg("failed to mark notification read")
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags all of a user's unread notifications as read.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to mark notifications read")
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
