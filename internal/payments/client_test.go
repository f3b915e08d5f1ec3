package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSessionSendsFormAndDecodesResponse(t *testing.T) {
	var gotAuth, gotIdempotency string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotIdempotency = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess_123","url":"https://pay.example/s/sess_123","payment_status":"unpaid"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_test_key", server.URL)
	session, err := client.CreateCheckoutSession(context.Background(), CreateSessionInput{
		CustomerEmail: "parent@example.com",
		SuccessURL:    "https://shop.example/success",
		CancelURL:     "https://shop.example/cart",
		Lines: []CheckoutLine{
			{Name: "Chicken Bento", Amount: 1250, Quantity: 1},
			{Name: "Fruit Cup", Amount: 300, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession returned error: %v", err)
	}

	if session.ID != "sess_123" {
		t.Fatalf("unexpected session id %s", session.ID)
	}
	if gotAuth != "Bearer sk_test_key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotIdempotency == "" {
		t.Fatal("expected idempotency key header")
	}
	if got := gotForm["line_items[0][price_data][unit_amount]"]; len(got) != 1 || got[0] != "1250" {
		t.Fatalf("unexpected unit amount %v", got)
	}
	if got := gotForm["customer_email"]; len(got) != 1 || got[0] != "parent@example.com" {
		t.Fatalf("unexpected customer email %v", got)
	}
}

func TestCreateCheckoutSessionSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"account cannot accept payments"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk_test_key", server.URL)
	_, err := client.CreateCheckoutSession(context.Background(), CreateSessionInput{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cart",
	})
	if err == nil {
		t.Fatal("expected error from API failure")
	}
}
