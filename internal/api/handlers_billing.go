/**
 * @description
 * HTTP handlers for billing: subscription checkout, cancellation, the billing
 * summary page, and payment-method management.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/HGJ777/IdeaVault/internal/app"
)

// BillingHandler holds the dependencies for billing-related handlers.
type BillingHandler struct {
	service *app.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(service *app.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// CheckoutRequest defines the JSON body for starting a subscription checkout.
type CheckoutRequest struct {
	IdeaID string `json:"idea_id"`
}

// CreateCheckout creates the subscription behind a public idea and returns
// the client secret for the first payment.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	email, _ := EmailFromContext(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IdeaID == "" {
		writeError(w, http.StatusBadRequest, "idea_id is required")
		return
	}

	result, err := h.service.CreateCheckout(r.Context(), userID, email, req.IdeaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelRequest defines the JSON body for cancelling an idea's subscription.
type CancelRequest struct {
	IdeaID string `json:"idea_id"`
}

// CancelSubscription stops the recurring charge and reverts the idea to
// private.
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IdeaID == "" {
		writeError(w, http.StatusBadRequest, "idea_id is required")
		return
	}

	if err := h.service.CancelSubscription(r.Context(), userID, req.IdeaID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary returns the billing page payload.
func (h *BillingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListPaymentMethods returns the user's saved cards.
func (h *BillingHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	methods, err := h.service.ListPaymentMethods(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

// SavePaymentMethodRequest defines the JSON body for attaching a card.
type SavePaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

// SavePaymentMethod attaches a card to the user's billing profile.
func (h *BillingHandler) SavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	email, _ := EmailFromContext(r.Context())

	var req SavePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SavePaymentMethod(r.Context(), userID, email, req.PaymentMethodID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
