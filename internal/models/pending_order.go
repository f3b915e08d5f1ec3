package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SelectedItem is a menu-item snapshot captured at checkout time, so later
// menu edits never change what a customer already paid for.
type SelectedItem struct {
	ID    string  `bson:"id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// MealSelection is one meal line inside a cart: the main dish, optional
// extras, who it is for, and where and when it is delivered.
type MealSelection struct {
	Main      SelectedItem   `bson:"main" json:"main"`
	AddOns    []SelectedItem `bson:"addOns" json:"addOns"`
	Fruit     *SelectedItem  `bson:"fruit,omitempty" json:"fruit,omitempty"`
	Side      *SelectedItem  `bson:"side,omitempty" json:"side,omitempty"`
	ChildID   string         `bson:"childId" json:"childId"`
	ChildName string         `bson:"childName" json:"childName"`
	Allergens StringList     `bson:"allergens" json:"allergens"`
	Year      string         `bson:"year,omitempty" json:"year,omitempty"`
	Class     string         `bson:"class,omitempty" json:"class,omitempty"`
	IsTeacher bool           `bson:"isTeacher" json:"isTeacher"`
	// DeliveryDate is stored as YYYY-MM-DD in the school's local calendar.
	DeliveryDate  string  `bson:"deliveryDate" json:"deliveryDate"`
	SchoolID      string  `bson:"schoolId" json:"schoolId"`
	SchoolName    string  `bson:"schoolName" json:"schoolName"`
	SchoolAddress string  `bson:"schoolAddress,omitempty" json:"schoolAddress,omitempty"`
	LineTotal     float64 `bson:"lineTotal" json:"lineTotal"`
}

// CouponInfo describes a coupon applied to a checkout.
type CouponInfo struct {
	Code           string  `bson:"code" json:"code"`
	DiscountAmount float64 `bson:"discountAmount" json:"discountAmount"`
}

// PricingSummary carries the aggregate totals of a cart or order.
type PricingSummary struct {
	Subtotal   float64     `bson:"subtotal" json:"subtotal"`
	FinalTotal float64     `bson:"finalTotal" json:"finalTotal"`
	Coupon     *CouponInfo `bson:"coupon,omitempty" json:"coupon,omitempty"`
}

// PendingOrder is the provisional order written at checkout initiation,
// keyed by the payment-processor session id. It is deleted either by the
// webhook finalizer on successful payment or by the expiry sweep.
type PendingOrder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Meals     []MealSelection    `bson:"meals" json:"meals"`
	Pricing   PricingSummary     `bson:"pricing" json:"pricing"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}
