package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a discount code redeemable at checkout. Either PercentOff or
// AmountOff is set, not both.
type Coupon struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code       string             `bson:"code" json:"code"`
	PercentOff float64            `bson:"percentOff,omitempty" json:"percentOff,omitempty"`
	AmountOff  float64            `bson:"amountOff,omitempty" json:"amountOff,omitempty"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	ExpiresAt  *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
