package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Menu item types. AddOns, fruit and sides attach to a main dish at
// checkout; only mains can stand alone in a meal.
const (
	MenuTypeMain  = "main"
	MenuTypeAddOn = "addon"
	MenuTypeFruit = "fruit"
	MenuTypeSide  = "side"
)

type MenuItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Type        string             `bson:"type" json:"type"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Allergens   StringList         `bson:"allergens" json:"allergens"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
