/**
 * @description
 * Shared response helpers for the API handlers: JSON writing and the mapping
 * from service-layer errors to HTTP status codes.
 */
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/store"
)

// writeJSON is a helper to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't send a JSON error, so just log it.
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}

// writeError emits a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondServiceError translates service and store errors into HTTP responses.
// Anything unmapped is a 500 with a generic body; the real error goes to the
// log, not the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrIdeaNotFound),
		errors.Is(err, store.ErrIdeaUpdateNotFound),
		errors.Is(err, store.ErrMessageNotFound),
		errors.Is(err, store.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrPrivacyDowngrade),
		errors.Is(err, app.ErrCheckoutRequired),
		errors.Is(err, app.ErrAlreadyBilled),
		errors.Is(err, app.ErrNotSubscribed),
		errors.Is(err, app.ErrEditWindowClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrLicensingDisabled),
		errors.Is(err, app.ErrSelfContact),
		errors.Is(err, app.ErrPrivateIdea):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("ERROR: unhandled service error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
