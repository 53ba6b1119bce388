/**
 * @description
 * This file contains the HTTP handler for processing incoming Stripe webhooks.
 * It is the entry point for all billing state changes that originate at the
 * payment processor rather than in this API.
 *
 * Key features:
 * - Security: verifies the Stripe-Signature header (HMAC-SHA256 over the raw
 *   body) before anything else runs; a bad signature never touches the store.
 * - Replay protection: rejects timestamps outside the tolerance window and
 *   suppresses recently seen event ids.
 * - Dispatch: hands verified events to the billing service for reconciliation.
 */
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

// signatureTolerance bounds how old a webhook timestamp may be before the
// request is treated as a replay.
const signatureTolerance = 5 * time.Minute

// EventProcessor applies a verified webhook event. Implemented by the billing
// service.
type EventProcessor interface {
	HandleEvent(ctx context.Context, event domain.StripeEvent) error
}

// WebhookHandler processes incoming webhooks from Stripe.
type WebhookHandler struct {
	processor       EventProcessor
	secret          string
	now             func() time.Time
	processedEvents map[string]time.Time
	mutex           sync.Mutex
}

// NewWebhookHandler creates a new handler for the webhook endpoint.
func NewWebhookHandler(processor EventProcessor, secret string) *WebhookHandler {
	return &WebhookHandler{
		processor:       processor,
		secret:          secret,
		now:             time.Now,
		processedEvents: make(map[string]time.Time),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = "req_" + uuid.NewString()
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[%s] Error reading webhook body: %v", requestID, err)
		http.Error(w, "Cannot read request body", http.StatusBadRequest)
		return
	}

	if err := h.verifySignature(r.Header.Get("Stripe-Signature"), body); err != nil {
		log.Printf("[%s] Rejected webhook: %v", requestID, err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	var event domain.StripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[%s] Error decoding webhook JSON: %v", requestID, err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if event.ID == "" || event.Type == "" {
		log.Printf("[%s] Webhook missing event id or type", requestID)
		http.Error(w, "Invalid event payload", http.StatusBadRequest)
		return
	}

	log.Printf("[%s] Received webhook event %s (%s)", requestID, event.ID, event.Type)

	if h.isDuplicateEvent(event.ID) {
		log.Printf("[%s] Duplicate event ignored: %s", requestID, event.ID)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Duplicate event ignored"))
		return
	}

	if err := h.processor.HandleEvent(r.Context(), event); err != nil {
		log.Printf("[%s] Failed to process event %s: %v", requestID, event.ID, err)
		// A non-2xx makes Stripe redeliver, which is what we want for
		// transient failures.
		http.Error(w, "Internal server error during event processing", http.StatusInternalServerError)
		return
	}
	h.markEventProcessed(event.ID)

	log.Printf("[%s] Webhook processed successfully in %v", requestID, time.Since(startTime))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Webhook received"))
}

// verifySignature checks the Stripe-Signature header against the raw body.
// The header carries a unix timestamp and one or more v1 signatures; each v1
// value is HMAC-SHA256 of "<timestamp>.<body>" keyed with the endpoint secret.
func (h *WebhookHandler) verifySignature(header string, body []byte) error {
	if h.secret == "" {
		return fmt.Errorf("webhook secret is not configured")
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return fmt.Errorf("missing Stripe-Signature header")
	}

	var timestamp int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return fmt.Errorf("malformed timestamp in signature header")
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return fmt.Errorf("signature header missing timestamp or v1 signature")
	}

	age := h.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return fmt.Errorf("no matching v1 signature")
}

// isDuplicateEvent checks if we've already processed this event recently.
// Stripe retries aggressively, and reconciliation is idempotent anyway, but
// suppressing fresh duplicates saves the processor round-trips. Only events
// that completed successfully are in the map, so a delivery that failed with
// a 500 is never mistaken for a duplicate when the sender retries it.
func (h *WebhookHandler) isDuplicateEvent(eventID string) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Drop entries older than an hour so the map cannot grow unbounded.
	cutoff := h.now().Add(-1 * time.Hour)
	for id, seen := range h.processedEvents {
		if seen.Before(cutoff) {
			delete(h.processedEvents, id)
		}
	}

	if seen, exists := h.processedEvents[eventID]; exists {
		if h.now().Sub(seen) < 5*time.Minute {
			return true
		}
	}
	return false
}

// markEventProcessed records an event id after it has been handled without
// error.
func (h *WebhookHandler) markEventProcessed(eventID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.processedEvents[eventID] = h.now()
}
