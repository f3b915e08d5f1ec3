package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSummary records how an order was settled. Amount is in major
// currency units; the processor reports minor units on the wire.
type PaymentSummary struct {
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Method    string    `bson:"method" json:"method"`
	PaidAt    time.Time `bson:"paidAt" json:"paidAt"`
	Amount    float64   `bson:"amount" json:"amount"`
}

// Order is the permanent, paid order document. The document id is the
// human-readable order id (ORD-YYYYMMDD-XXXXXXXXX). MealIDs is fixed at
// creation and must have exactly ItemCount entries.
type Order struct {
	ID          string             `bson:"_id" json:"orderId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	UserEmail   string             `bson:"userEmail" json:"userEmail"`
	MealIDs     []string           `bson:"mealIds" json:"mealIds"`
	Pricing     PricingSummary     `bson:"pricing" json:"pricing"`
	Payment     PaymentSummary     `bson:"payment" json:"payment"`
	ItemCount   int                `bson:"itemCount" json:"itemCount"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
