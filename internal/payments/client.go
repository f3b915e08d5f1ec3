package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.stripe.com"

// Client calls the payment processor's REST API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey string) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL points the client at a non-default API host, used by
// tests and local stubs.
func NewClientWithBaseURL(secretKey, baseURL string) *Client {
	c := NewClient(secretKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// CheckoutLine is one priced line in a checkout session.
type CheckoutLine struct {
	Name string
	// Amount is the unit price in minor currency units.
	Amount   int64
	Quantity int64
}

// CreateSessionInput describes the checkout session to open.
type CreateSessionInput struct {
	CustomerEmail string
	Lines         []CheckoutLine
	SuccessURL    string
	CancelURL     string
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a hosted checkout session. A fresh
// idempotency key is attached so an HTTP-level retry cannot open two
// sessions for one cart.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", input.SuccessURL)
	form.Set("cancel_url", input.CancelURL)
	if input.CustomerEmail != "" {
		form.Set("customer_email", input.CustomerEmail)
	}

	for i, line := range input.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "aud")
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.Amount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(line.Quantity, 10))
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CheckoutSession{}, err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return CheckoutSession{}, fmt.Errorf("create checkout session: %s", apiErr.Error.Message)
		}
		return CheckoutSession{}, fmt.Errorf("create checkout session: status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode checkout session: %w", err)
	}
	return session, nil
}
