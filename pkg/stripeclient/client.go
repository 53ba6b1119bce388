/**
 * @description
 * This package provides a client for the Stripe REST API. It encapsulates the
 * authenticated form-encoded requests the billing flows need: customer
 * creation, per-idea subscription creation and cancellation, and payment
 * method management.
 *
 * Key features:
 * - Manages the API base URL and secret key.
 * - Encodes request parameters the way the Stripe API expects
 *   (application/x-www-form-urlencoded, bracketed nested keys).
 * - Decodes Stripe's JSON error envelope into a typed error.
 *
 * @dependencies
 * - context, fmt, io, net/http, net/url, strings, time: Standard Go libraries.
 * - The service's internal domain package for Stripe API models.
 */
package stripeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HGJ777/IdeaVault/internal/domain"
)

// Client is a client for the Stripe API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Stripe API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is returned when Stripe responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("stripe: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("stripe: request failed with status %d", e.StatusCode)
}

// CreateCustomer creates a Stripe customer for an IdeaVault user. The user id
// is stored in the customer metadata so webhook payloads can be traced back.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (*domain.StripeCustomer, error) {
	params := url.Values{}
	params.Set("email", email)
	params.Set("metadata[supabase_user_id]", userID)

	var customer domain.StripeCustomer
	if err := c.do(ctx, http.MethodPost, "/v1/customers", params, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateSubscription creates an incomplete recurring subscription for a single
// idea. The idea and owner ids travel in the subscription metadata; the
// returned object has latest_invoice.payment_intent expanded so the caller can
// hand the client secret to the frontend.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID, ideaID, userID string) (*domain.StripeSubscription, error) {
	params := url.Values{}
	params.Set("customer", customerID)
	params.Set("items[0][price]", priceID)
	params.Set("metadata[idea_id]", ideaID)
	params.Set("metadata[user_id]", userID)
	params.Set("payment_behavior", "default_incomplete")
	params.Set("payment_settings[save_default_payment_method]", "on_subscription")
	params.Add("expand[]", "latest_invoice.payment_intent")

	var sub domain.StripeSubscription
	if err := c.do(ctx, http.MethodPost, "/v1/subscriptions", params, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscription retrieves a subscription, primarily to read its metadata
// when an invoice webhook only carries the subscription id.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*domain.StripeSubscription, error) {
	var sub domain.StripeSubscription
	path := fmt.Sprintf("/v1/subscriptions/%s", subscriptionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CancelSubscription cancels a subscription immediately.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*domain.StripeSubscription, error) {
	var sub domain.StripeSubscription
	path := fmt.Sprintf("/v1/subscriptions/%s", subscriptionID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// AttachPaymentMethod attaches a payment method to a customer and makes it the
// default for future subscription invoices.
func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	params := url.Values{}
	params.Set("customer", customerID)
	path := fmt.Sprintf("/v1/payment_methods/%s/attach", paymentMethodID)
	if err := c.do(ctx, http.MethodPost, path, params, nil); err != nil {
		return err
	}

	defaults := url.Values{}
	defaults.Set("invoice_settings[default_payment_method]", paymentMethodID)
	customerPath := fmt.Sprintf("/v1/customers/%s", customerID)
	return c.do(ctx, http.MethodPost, customerPath, defaults, nil)
}

// ListPaymentMethods lists a customer's saved cards.
func (c *Client) ListPaymentMethods(ctx context.Context, customerID string) ([]domain.StripePaymentMethod, error) {
	params := url.Values{}
	params.Set("customer", customerID)
	params.Set("type", "card")

	var list domain.StripePaymentMethodList
	path := "/v1/payment_methods?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// do makes an authenticated request to the Stripe API. Params are sent as a
// form body for POST/DELETE and must already be on the path for GET.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, target interface{}) error {
	var body io.Reader
	if params != nil && method != http.MethodGet {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope domain.StripeAPIError
		if err := json.Unmarshal(respBody, &envelope); err == nil {
			apiErr.Type = envelope.Err.Type
			apiErr.Code = envelope.Err.Code
			apiErr.Message = envelope.Err.Message
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}
