package http

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)
	items, err := s.repo.ListNotifications(r.Context(), owner)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	unread, err := s.repo.UnreadNotificationCount(r.Context(), owner)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := struct {
		Unread        int64              `json:"unread"`
		Notifications []notificationView `json:"notifications"`
	}{Unread: unread, Notifications: make([]notificationView, 0, len(items))}
	for _, n := range items {
		out.Notifications = append(out.Notifications, notificationToView(n))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleToggleNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.repo.ToggleNotificationRead(r.Context(), userID(r), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/notifications")
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.MarkAllNotificationsRead(r.Context(), userID(r)); err != nil {
		respondStorageError(w, r, err)
		return
	}
	redirectAfterMutation(w, r, "/notifications")
}
