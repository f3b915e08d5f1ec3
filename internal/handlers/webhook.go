package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/mailer"
	"backend/internal/models"
	"backend/internal/orderid"
	"backend/internal/payments"
)

/* =========================
   PAYMENT WEBHOOK
========================= */

// HandleStripeWebhook finalizes a pending order once the processor confirms
// payment. Anything returned as a non-2xx triggers redelivery of the same
// event, so only genuinely retryable failures use 500.
func HandleStripeWebhook(db *mongo.Database, webhookSecret string, mail mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /webhooks/stripe"
		defer handlePanic(c, route)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "unreadable body")
			return
		}

		event, err := payments.ParseEvent(body, c.GetHeader("Stripe-Signature"), webhookSecret)
		if err != nil {
			log.Printf("[WEBHOOK] [ERROR] signature rejected: %v", err)
			respondWithError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		if event.Type != payments.EventCheckoutCompleted {
			log.Printf("[WEBHOOK] [INFO] ignoring event type %s", event.Type)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		session, err := event.CheckoutSession()
		if err != nil {
			log.Printf("[WEBHOOK] [ERROR] bad event payload: %v", err)
			respondWithError(c, http.StatusBadRequest, route, "invalid event payload")
			return
		}

		// Not settled yet is a normal no-op, the processor sends another
		// event once the payment clears.
		if session.PaymentStatus != "paid" {
			log.Printf("[WEBHOOK] [INFO] session %s not settled (payment_status=%s)", session.ID, session.PaymentStatus)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		store := newOrderStore(db)

		pending, err := findPendingOrder(ctx, store, session.ID)
		if err != nil {
			var dup duplicatePendingOrderError
			if errors.As(err, &dup) {
				log.Printf("[WEBHOOK] [ERROR] DATA INTEGRITY: %v", dup)
			} else {
				log.Printf("[WEBHOOK] [ERROR] pending order lookup for %s failed: %v", session.ID, err)
			}
			respondWithError(c, http.StatusInternalServerError, route, "pending order lookup failed")
			return
		}

		now := time.Now()
		orderID, err := orderid.New(now)
		if err != nil {
			log.Printf("[WEBHOOK] [ERROR] order id generation failed: %v", err)
			respondWithError(c, http.StatusInternalServerError, route, "order id generation failed")
			return
		}

		payment := models.PaymentSummary{
			SessionID: session.ID,
			Method:    "card",
			PaidAt:    now,
			Amount:    amountFromMinorUnits(session.AmountTotal),
		}

		order, meals, summary := expandPendingOrder(pending, orderID, payment, now)

		if err := store.CommitOrder(ctx, order, meals, summary, &pending); err != nil {
			var conflict pendingOrderConflictError
			if errors.As(err, &conflict) {
				log.Printf("[WEBHOOK] [ERROR] %v (concurrent delivery lost the race)", conflict)
			} else {
				log.Printf("[WEBHOOK] [ERROR] commit for session %s failed: %v", session.ID, err)
			}
			respondWithError(c, http.StatusInternalServerError, route, "finalization failed")
			return
		}

		log.Printf("[WEBHOOK] [INFO] order %s finalized for session %s (%d meals)", orderID, session.ID, len(meals))

		// The money is already settled and committed; email is best-effort
		// and must never fail the webhook response.
		go sendOrderConfirmation(mail, order, meals)

		c.JSON(http.StatusOK, gin.H{"received": true, "orderId": orderID})
	}
}

func sendOrderConfirmation(mail mailer.Sender, order models.Order, meals []models.MealRecord) {
	if mail == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	confirmation := mailer.OrderConfirmation{
		ToEmail:   order.UserEmail,
		OrderID:   order.ID,
		TotalPaid: order.Payment.Amount,
		Meals:     mailer.SummarizeMeals(meals),
	}

	if err := mail.SendOrderConfirmation(ctx, confirmation); err != nil {
		log.Printf("[MAILER] [ERROR] confirmation for %s not sent: %v", order.ID, err)
	}
}
