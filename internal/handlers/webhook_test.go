package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/mailer"
	"backend/internal/models"
	"backend/internal/payments"
)

const webhookTestSecret = "whsec_handler_test"

// The pre-database paths of the webhook handler (signature checks and
// event-kind gating) must decide before any store access, so these run with
// a nil database.

func performWebhook(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(body))
	if signature != "" {
		c.Request.Header.Set("Stripe-Signature", signature)
	}

	HandleStripeWebhook(nil, webhookTestSecret, nil)(c)
	return recorder
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	recorder := performWebhook(t, []byte(`{"type":"checkout.session.completed"}`), "")
	if recorder.Code != 400 {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	body := []byte(`{"type":"checkout.session.completed"}`)
	wrong := payments.SignPayload(body, "whsec_other", time.Now())

	recorder := performWebhook(t, body, wrong)
	if recorder.Code != 400 {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	signature := payments.SignPayload(body, webhookTestSecret, time.Now())

	recorder := performWebhook(t, body, signature)
	if recorder.Code != 200 {
		t.Fatalf("expected 200 no-op, got %d", recorder.Code)
	}
}

func TestWebhookUnpaidSessionIsNoOp(t *testing.T) {
	body := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "sess_1", "payment_status": "unpaid", "amount_total": 2700}}
	}`)
	signature := payments.SignPayload(body, webhookTestSecret, time.Now())

	recorder := performWebhook(t, body, signature)
	if recorder.Code != 200 {
		t.Fatalf("expected 200 no-op for unpaid session, got %d", recorder.Code)
	}
}

func TestWebhookRejectsPayloadWithoutSessionID(t *testing.T) {
	body := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"payment_status": "paid"}}
	}`)
	signature := payments.SignPayload(body, webhookTestSecret, time.Now())

	recorder := performWebhook(t, body, signature)
	if recorder.Code != 400 {
		t.Fatalf("expected 400 for payload without session id, got %d", recorder.Code)
	}
}

type failingSender struct {
	calls int
}

func (f *failingSender) SendOrderConfirmation(ctx context.Context, confirmation mailer.OrderConfirmation) error {
	f.calls++
	return errors.New("smtp is on fire")
}

func TestSendOrderConfirmationSwallowsFailure(t *testing.T) {
	sender := &failingSender{}

	order := models.Order{ID: "ORD-20250314-ABCDEFGHJ", UserEmail: "parent@example.com"}
	sendOrderConfirmation(sender, order, nil)

	if sender.calls != 1 {
		t.Fatalf("expected 1 send attempt, got %d", sender.calls)
	}
}

func TestSendOrderConfirmationNilSender(t *testing.T) {
	// must not panic
	sendOrderConfirmation(nil, models.Order{}, nil)
}
