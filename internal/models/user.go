package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Child is a meal recipient registered under a parent account. Staff
// ordering for themselves are stored the same way with IsTeacher set.
type Child struct {
	ID        string     `bson:"id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Allergens StringList `bson:"allergens" json:"allergens"`
	Year      string     `bson:"year,omitempty" json:"year,omitempty"`
	Class     string     `bson:"class,omitempty" json:"class,omitempty"`
	IsTeacher bool       `bson:"isTeacher" json:"isTeacher"`
}

// OrderSummary is the denormalized order-history entry embedded in the
// user document. Appended once per finalized order, never rewritten.
type OrderSummary struct {
	OrderID   string    `bson:"orderId" json:"orderId"`
	MealIDs   []string  `bson:"mealIds" json:"mealIds"`
	TotalPaid float64   `bson:"totalPaid" json:"totalPaid"`
	ItemCount int       `bson:"itemCount" json:"itemCount"`
	OrderedOn time.Time `bson:"orderedOn" json:"orderedOn"`
}

// User represents a parent or staff account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Children     []Child            `bson:"children" json:"children"`
	Orders       []OrderSummary     `bson:"orders" json:"orders"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
