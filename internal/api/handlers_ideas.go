/**
 * @description
 * HTTP handlers for idea records: creation, the public gallery, the owner's
 * list, stats, edits, deletion, view counting, and the progress timeline.
 * Handlers parse requests, call the idea service, and write the response.
 */
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/domain"
)

// IdeaHandler holds the dependencies for idea-related handlers.
type IdeaHandler struct {
	service *app.IdeaService
}

// NewIdeaHandler creates a new IdeaHandler.
func NewIdeaHandler(service *app.IdeaService) *IdeaHandler {
	return &IdeaHandler{service: service}
}

// CreateIdea handles the creation of a new idea.
func (h *IdeaHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input domain.NewIdeaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	idea, err := h.service.CreateIdea(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

// Gallery lists public ideas. This endpoint is unauthenticated.
func (h *IdeaHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.IdeaFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		SortBy:   query.Get("sort"),
		Limit:    parseIntParam(query.Get("limit"), 50),
		Offset:   parseIntParam(query.Get("offset"), 0),
	}

	ideas, err := h.service.Gallery(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ideas)
}

// ListMine lists every idea the authenticated user owns.
func (h *IdeaHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ideas, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ideas)
}

// Stats returns the portfolio counters for the manage dashboard.
func (h *IdeaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetIdea returns a single idea, subject to visibility rules.
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	idea, err := h.service.GetIdeaForViewer(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// UpdateIdea applies a category edit to an idea the user owns.
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var edit domain.IdeaEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	idea, err := h.service.UpdateIdea(r.Context(), userID, chi.URLParam(r, "id"), edit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

// DeleteIdea removes an idea the user owns.
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.DeleteIdea(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordView bumps an idea's view counter.
func (h *IdeaHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.RecordView(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IdeaUpdateRequest defines the JSON body for creating or editing a timeline
// update.
type IdeaUpdateRequest struct {
	Content    string `json:"content"`
	UpdateType string `json:"update_type"`
}

// AddUpdate appends a progress note to an idea.
func (h *IdeaHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req IdeaUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update, err := h.service.AddIdeaUpdate(r.Context(), userID, chi.URLParam(r, "id"), req.Content, req.UpdateType)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

// ListUpdates returns an idea's progress timeline.
func (h *IdeaHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	updates, err := h.service.ListIdeaUpdates(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}

// EditUpdate rewrites a timeline update created earlier the same day.
func (h *IdeaHandler) EditUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req IdeaUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.EditIdeaUpdate(r.Context(), userID, chi.URLParam(r, "updateID"), req.Content, req.UpdateType); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUpdate removes a timeline update.
func (h *IdeaHandler) DeleteUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.service.DeleteIdeaUpdate(r.Context(), userID, chi.URLParam(r, "updateID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses a query parameter with a fallback for missing or
// malformed values.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
