package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"gks/record-service/internal/models"

	"github.com/google/uuid"
)

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	notifications, unread, err := h.store.ListNotifications(r.Context(), user.UserID, limit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, notificationList{
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

func (h *Handler) handleNotificationsReadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.MarkAllNotificationsRead(r.Context(), user.UserID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleNotificationSubtree(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) != 2 || parts[1] != "read" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	notificationID := parts[0]
	if _, err := uuid.Parse(notificationID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "notification id must be a UUID")
		return
	}

	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.MarkNotificationRead(r.Context(), notificationID, user.UserID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
