package payments

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

func TestVerifySignatureAcceptsValidHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()

	header := SignPayload(payload, testSecret, now)
	if err := VerifySignature(payload, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureMissingHeader(t *testing.T) {
	err := VerifySignature([]byte(`{}`), "", testSecret, DefaultTolerance, time.Now())
	if !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	header := SignPayload(payload, "whsec_other", now)
	err := VerifySignature(payload, header, testSecret, DefaultTolerance, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	payload := []byte(`{"amount_total":2700}`)
	now := time.Now()
	header := SignPayload(payload, testSecret, now)

	tampered := []byte(`{"amount_total":1}`)
	err := VerifySignature(tampered, header, testSecret, DefaultTolerance, now)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	tests := []string{
		"v1=deadbeef",
		"t=notanumber,v1=deadbeef",
		"t=1712000000",
		"garbage",
	}

	for _, header := range tests {
		err := VerifySignature([]byte(`{}`), header, testSecret, DefaultTolerance, time.Now())
		if !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("header %q: expected ErrInvalidSignature, got %v", header, err)
		}
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)

	header := SignPayload(payload, testSecret, signedAt)
	err := VerifySignature(payload, header, testSecret, DefaultTolerance, time.Now())
	if !errors.Is(err, ErrExpiredTimestamp) {
		t.Fatalf("expected ErrExpiredTimestamp, got %v", err)
	}
}

func TestParseEventDecodesCheckoutSession(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "sess_1", "payment_status": "paid", "amount_total": 2700}}
	}`)

	event, err := ParseEvent(payload, SignPayload(payload, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if event.Type != EventCheckoutCompleted {
		t.Fatalf("unexpected event type %s", event.Type)
	}

	session, err := event.CheckoutSession()
	if err != nil {
		t.Fatalf("CheckoutSession returned error: %v", err)
	}
	if session.ID != "sess_1" || session.PaymentStatus != "paid" || session.AmountTotal != 2700 {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCheckoutSessionRequiresID(t *testing.T) {
	var event Event
	event.Data.Object = []byte(`{"payment_status":"paid"}`)

	if _, err := event.CheckoutSession(); err == nil {
		t.Fatal("expected error for session without id")
	}
}
