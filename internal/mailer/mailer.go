// Package mailer sends transactional email through the provider's v3 HTTP
// API. All sends are best-effort: callers log failures, nothing retries.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"backend/internal/models"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Sender is what the handlers depend on, so tests can substitute a fake.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error
}

// MealSummary is the simplified meal shape rendered into the confirmation
// email.
type MealSummary struct {
	ChildName    string
	MainName     string
	AddOnNames   string
	FruitName    string
	SideName     string
	DeliveryDate string
	SchoolName   string
}

// OrderConfirmation carries everything the confirmation email needs.
type OrderConfirmation struct {
	ToEmail   string
	ToName    string
	OrderID   string
	TotalPaid float64
	Meals     []MealSummary
}

// Client talks to the email provider.
type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, fromEmail, fromName string) *Client {
	return &Client{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL points the client at a non-default API host, used by
// tests.
func NewClientWithBaseURL(apiKey, fromEmail, fromName, baseURL string) *Client {
	c := NewClient(apiKey, fromEmail, fromName)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress   `json:"from"`
	Subject string        `json:"subject"`
	Content []mailContent `json:"content"`
}

// SendOrderConfirmation posts the confirmation email for a finalized order.
func (c *Client) SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error {
	payload := mailRequest{
		From:    mailAddress{Email: c.fromEmail, Name: c.fromName},
		Subject: fmt.Sprintf("Order confirmed: %s", confirmation.OrderID),
		Content: []mailContent{{
			Type:  "text/plain",
			Value: buildConfirmationBody(confirmation),
		}},
	}
	payload.Personalizations = make([]struct {
		To []mailAddress `json:"to"`
	}, 1)
	payload.Personalizations[0].To = []mailAddress{{
		Email: confirmation.ToEmail,
		Name:  confirmation.ToName,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v3/mail/send",
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send confirmation: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

func buildConfirmationBody(confirmation OrderConfirmation) string {
	var b strings.Builder

	name := confirmation.ToName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for your order %s. Here's what we have planned:\n\n", confirmation.OrderID)

	for _, meal := range confirmation.Meals {
		fmt.Fprintf(&b, "- %s for %s on %s at %s", meal.MainName, meal.ChildName, meal.DeliveryDate, meal.SchoolName)
		extras := make([]string, 0, 3)
		if meal.AddOnNames != "" {
			extras = append(extras, meal.AddOnNames)
		}
		if meal.FruitName != "" {
			extras = append(extras, meal.FruitName)
		}
		if meal.SideName != "" {
			extras = append(extras, meal.SideName)
		}
		if len(extras) > 0 {
			fmt.Fprintf(&b, " (with %s)", strings.Join(extras, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTotal paid: $%.2f\n\nSee you at lunch!\n", confirmation.TotalPaid)
	return b.String()
}

// SummarizeMeals flattens meal records into the simplified email shape.
func SummarizeMeals(meals []models.MealRecord) []MealSummary {
	summaries := make([]MealSummary, 0, len(meals))
	for _, meal := range meals {
		addOnNames := make([]string, 0, len(meal.AddOns))
		for _, addOn := range meal.AddOns {
			addOnNames = append(addOnNames, addOn.Name)
		}

		summary := MealSummary{
			ChildName:    meal.Recipient.Name,
			MainName:     meal.Main.Name,
			AddOnNames:   strings.Join(addOnNames, ", "),
			DeliveryDate: formatDeliveryDate(meal.DeliveryDate),
			SchoolName:   meal.School.Name,
		}
		if meal.Fruit != nil {
			summary.FruitName = meal.Fruit.Name
		}
		if meal.Side != nil {
			summary.SideName = meal.Side.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func formatDeliveryDate(value string) string {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return parsed.Format("Monday, 2 January 2006")
}
