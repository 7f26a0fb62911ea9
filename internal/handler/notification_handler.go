package handler

import (
	"net/http"

	"stockroom/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationHandler handles notification HTTP requests.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("handler", "notification").Logger(),
	}
}

// ListUnread handles GET /api/notifications?userId=... requests.
func (h *NotificationHandler) ListUnread(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid userId query parameter is required", h.logger)
		return
	}

	notifications, err := h.notifications.ListUnread(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles POST /api/notifications/{id}/read requests.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notification read", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/notifications/read-all?userId=... requests.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid userId query parameter is required", h.logger)
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
