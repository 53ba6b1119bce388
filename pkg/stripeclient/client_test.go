package stripeclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateSubscriptionRequest(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "sub_1",
			"customer": "cus_1",
			"status": "incomplete",
			"metadata": {"idea_id": "idea-1", "user_id": "user-1"},
			"latest_invoice": {"id": "in_1", "payment_intent": {"id": "pi_1", "client_secret": "pi_secret"}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123")
	sub, err := client.CreateSubscription(context.Background(), "cus_1", "price_1", "idea-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/subscriptions" {
		t.Fatalf("expected /v1/subscriptions, got %s", gotPath)
	}
	if gotAuth != "Bearer sk_test_123" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("expected form content type, got %q", gotContentType)
	}

	wantFields := map[string]string{
		"customer":           "cus_1",
		"items[0][price]":    "price_1",
		"metadata[idea_id]":  "idea-1",
		"metadata[user_id]":  "user-1",
		"payment_behavior":   "default_incomplete",
		"expand[]":           "latest_invoice.payment_intent",
	}
	for key, want := range wantFields {
		values, ok := gotForm[key]
		if !ok || len(values) == 0 || values[0] != want {
			t.Fatalf("form field %q: got %v, want %q", key, values, want)
		}
	}

	if sub.ID != "sub_1" {
		t.Fatalf("expected sub_1, got %s", sub.ID)
	}
	if sub.Metadata["idea_id"] != "idea-1" {
		t.Fatalf("metadata not decoded: %v", sub.Metadata)
	}
	if sub.LatestInvoice == nil || sub.LatestInvoice.PaymentIntent == nil || sub.LatestInvoice.PaymentIntent.ClientSecret != "pi_secret" {
		t.Fatalf("expanded invoice not decoded: %+v", sub.LatestInvoice)
	}
}

func TestCancelSubscriptionUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": "sub_1", "status": "canceled"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123")
	sub, err := client.CancelSubscription(context.Background(), "sub_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", gotMethod)
	}
	if gotPath != "/v1/subscriptions/sub_1" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if sub.Status != "canceled" {
		t.Fatalf("expected canceled, got %s", sub.Status)
	}
}

func TestListPaymentMethodsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("customer") != "cus_1" || q.Get("type") != "card" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"data": [{"id": "pm_1", "type": "card", "card": {"brand": "visa", "last4": "4242", "exp_month": 12, "exp_year": 2030}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123")
	methods, err := client.ListPaymentMethods(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("expected one payment method, got %d", len(methods))
	}
	if methods[0].Card.Last4 != "4242" {
		t.Fatalf("card not decoded: %+v", methods[0])
	}
}

func TestErrorEnvelopeDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"type": "card_error", "code": "card_declined", "message": "Your card was declined."}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123")
	_, err := client.CreateCustomer(context.Background(), "u@example.com", "user-1")
	if err == nil {
		t.Fatalf("expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", apiErr.StatusCode)
	}
	if apiErr.Code != "card_declined" {
		t.Fatalf("expected card_declined, got %s", apiErr.Code)
	}
	if apiErr.Message != "Your card was declined." {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestAttachPaymentMethodSetsDefault(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"id": "x"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_123")
	if err := client.AttachPaymentMethod(context.Background(), "pm_1", "cus_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected attach followed by customer update, got %v", paths)
	}
	if paths[0] != "/v1/payment_methods/pm_1/attach" {
		t.Fatalf("unexpected first call %s", paths[0])
	}
	if paths[1] != "/v1/customers/cus_1" {
		t.Fatalf("unexpected second call %s", paths[1])
	}
}
