package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
	"github.com/gorilla/mux"
)

type NotificationsHandler struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationsHandler(nr repository.NotificationRepo) *NotificationsHandler {
	return &NotificationsHandler{notificationRepo: nr}
}

// List returns the calling account's notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := accountIDFromContext(r.Context())
	if accountID <= 0 {
		http.Error(w, "account_id required", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	list, err := h.notificationRepo.ListNotifications(r.Context(), accountID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}

	writeJSON(w, map[string]any{
		"limit":  limit,
		"offset": offset,
		"items":  list,
	}, http.StatusOK)
}

// MarkRead stamps read time once; re-reading is a no-op.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.notificationRepo.MarkNotificationRead(r.Context(), id, time.Now().UnixMilli()); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
