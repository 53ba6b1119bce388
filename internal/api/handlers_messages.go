/**
 * @description
 * HTTP handlers for the contact/inquiry relay and the notification inbox.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/domain"
)

// MessageHandler holds the dependencies for inquiry and notification handlers.
type MessageHandler struct {
	service *app.MessagingService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *app.MessagingService) *MessageHandler {
	return &MessageHandler{service: service}
}

// SubmitInquiry handles the contact form on a public idea.
func (h *MessageHandler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	email, _ := EmailFromContext(r.Context())

	var input domain.InquiryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.service.SubmitInquiry(r.Context(), userID, email, chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// Inbox lists the user's received inquiries.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	filter := domain.MessageFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
		Limit:  parseIntParam(query.Get("limit"), 50),
		Offset: parseIntParam(query.Get("offset"), 0),
	}

	messages, err := h.service.Inbox(r.Context(), userID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// GetMessage returns one inquiry addressed to the user.
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	msg, err := h.service.GetMessage(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// MessageStatusRequest defines the JSON body for status changes.
type MessageStatusRequest struct {
	Status string `json:"status"`
}

// SetMessageStatus moves an inquiry to read, replied or archived.
func (h *MessageHandler) SetMessageStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req MessageStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SetMessageStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Status); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadMessageCount returns the inbox badge count.
func (h *MessageHandler) UnreadMessageCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.service.UnreadMessageCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Notifications lists the user's notifications.
func (h *MessageHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	filter := domain.NotificationFilter{
		Status: query.Get("status"),
		Limit:  parseIntParam(query.Get("limit"), 50),
		Offset: parseIntParam(query.Get("offset"), 0),
	}

	notifications, err := h.service.Notifications(r.Context(), userID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead flags one notification as read.
func (h *MessageHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead flags every unread notification as read.
func (h *MessageHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.MarkAllNotificationsRead(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNotification removes a notification.
func (h *MessageHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.DeleteNotification(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadNotificationCount returns the navigation badge count.
func (h *MessageHandler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.service.UnreadNotificationCount(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
