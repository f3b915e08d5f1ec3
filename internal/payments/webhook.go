// Package payments wraps the payment processor's HTTP API: checkout session
// creation and webhook event verification.
package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventCheckoutCompleted is the only event kind the finalizer acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// DefaultTolerance bounds how old a signed webhook timestamp may be before
// it is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrExpiredTimestamp = errors.New("signature timestamp outside tolerance")
)

// Event is the envelope delivered to the webhook endpoint.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession is the session object embedded in checkout events and
// returned by session creation. AmountTotal is in minor currency units.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// CheckoutSession decodes the event payload as a checkout session.
func (e Event) CheckoutSession() (CheckoutSession, error) {
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode checkout session: %w", err)
	}
	if strings.TrimSpace(session.ID) == "" {
		return CheckoutSession{}, errors.New("checkout session has no id")
	}
	return session, nil
}

// VerifySignature checks the signature header against the raw request body.
// The header carries a unix timestamp and one or more HMAC-SHA256 digests of
// "{timestamp}.{body}" under the shared secret:
//
//	t=1712000000,v1=5257a869e7...
//
// Nothing in the body may be trusted before this passes.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrExpiredTimestamp
		}
	}

	expected := computeSignature(payload, timestamp, secret)
	for _, signature := range signatures {
		provided, err := hex.DecodeString(signature)
		if err != nil {
			continue
		}
		if hmac.Equal(provided, expected) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// ParseEvent verifies the signature and decodes the event envelope.
func ParseEvent(payload []byte, header, secret string) (Event, error) {
	if err := VerifySignature(payload, header, secret, DefaultTolerance, time.Now()); err != nil {
		return Event{}, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

func computeSignature(payload []byte, timestamp int64, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignPayload produces a signature header for the given body, used by tests
// and by the local development event replayer.
func SignPayload(payload []byte, secret string, now time.Time) string {
	timestamp := now.Unix()
	signature := computeSignature(payload, timestamp, secret)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(signature))
}
