package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchoolInfo is the delivery-site snapshot embedded in a meal record.
type SchoolInfo struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// Recipient is the snapshot of who a meal is for.
type Recipient struct {
	ID        string     `bson:"id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Allergens StringList `bson:"allergens" json:"allergens"`
	Year      string     `bson:"year,omitempty" json:"year,omitempty"`
	Class     string     `bson:"class,omitempty" json:"class,omitempty"`
	IsTeacher bool       `bson:"isTeacher" json:"isTeacher"`
}

// MealRecord is one delivered meal line within a finalized order. The
// document id is {orderId}-{3-digit index}, so replaying the same order
// produces the same ids. Immutable after creation except for admin
// corrections.
type MealRecord struct {
	ID           string             `bson:"_id" json:"mealId"`
	OrderID      string             `bson:"orderId" json:"orderId"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	DeliveryDate string             `bson:"deliveryDate" json:"deliveryDate"`
	School       SchoolInfo         `bson:"school" json:"school"`
	Recipient    Recipient          `bson:"recipient" json:"recipient"`
	Main         SelectedItem       `bson:"main" json:"main"`
	AddOns       []SelectedItem     `bson:"addOns" json:"addOns"`
	Fruit        *SelectedItem      `bson:"fruit,omitempty" json:"fruit,omitempty"`
	Side         *SelectedItem      `bson:"side,omitempty" json:"side,omitempty"`
	LineTotal    float64            `bson:"lineTotal" json:"lineTotal"`
	OrderedAt    time.Time          `bson:"orderedAt" json:"orderedAt"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
