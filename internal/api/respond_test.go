package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/store"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"idea not found", store.ErrIdeaNotFound, http.StatusNotFound},
		{"message not found", store.ErrMessageNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: title is required", app.ErrValidation), http.StatusUnprocessableEntity},
		{"privacy downgrade", app.ErrPrivacyDowngrade, http.StatusConflict},
		{"checkout required", app.ErrCheckoutRequired, http.StatusConflict},
		{"already billed", app.ErrAlreadyBilled, http.StatusConflict},
		{"edit window closed", app.ErrEditWindowClosed, http.StatusConflict},
		{"licensing disabled", app.ErrLicensingDisabled, http.StatusForbidden},
		{"self contact", app.ErrSelfContact, http.StatusForbidden},
		{"private idea contact", app.ErrPrivateIdea, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("error responses must be JSON: %v", err)
			}
			if body["error"] == "" {
				t.Fatalf("error body missing message")
			}
		})
	}
}

func TestUnknownErrorBodyIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("pq: column does not exist"))

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Fatalf("internal details must not leak to the client, got %q", body["error"])
	}
}
