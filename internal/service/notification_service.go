package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const unreadLimit = 10

// notificationService implements NotificationService.
type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger.With().Str("service", "notification").Logger(),
	}
}

// Notify creates one notification row per admin user (broadcast by
// duplication).
func (s *notificationService) Notify(ctx context.Context, message, notifType string, relatedEntityID *uuid.UUID) error {
	adminIDs, err := s.userRepo.ListAdminIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to resolve notification recipients")
		return fmt.Errorf("failed to resolve notification recipients: %w", err)
	}
	if len(adminIDs) == 0 {
		s.logger.Debug().Str("type", notifType).Msg("no admin users to notify")
		return nil
	}

	now := time.Now()
	notifications := make([]model.Notification, len(adminIDs))
	for i, userID := range adminIDs {
		notifications[i] = model.Notification{
			ID:              uuid.New(),
			Message:         message,
			Type:            notifType,
			RelatedEntityID: relatedEntityID,
			UserID:          userID,
			IsRead:          false,
			CreatedAt:       now,
		}
	}

	if err := s.notificationRepo.InsertMany(ctx, notifications); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}

	s.logger.Info().
		Str("type", notifType).
		Int("recipients", len(adminIDs)).
		Msg("notification fanned out")

	return nil
}

// ListUnread retrieves a user's most recent unread notifications.
func (s *notificationService) ListUnread(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.notificationRepo.ListUnread(ctx, userID, unreadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id)
}

// MarkAllRead flags all of a user's notifications as read.
func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
