package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsurePendingOrderIndexes enforces at most one pending order per payment
// session and indexes the expiry field for the cleanup sweep.
func EnsurePendingOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("pending_orders").Indexes()

	sessionIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().
			SetName("sessionId_unique").
			SetUnique(true),
	}

	expiryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("expiresAt_index"),
	}

	log.Println("EnsurePendingOrderIndexes: creating sessionId_unique and expiresAt_index")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{sessionIndex, expiryIndex})
	if err != nil {
		log.Println("EnsurePendingOrderIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	return nil
}

// EnsureMealIndexes supports the run-sheet queries (date + school) and the
// per-order meal lookups after finalization.
func EnsureMealIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("meals").Indexes()

	orderIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_index"),
	}

	runSheetIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "deliveryDate", Value: 1},
			{Key: "school.id", Value: 1},
		},
		Options: options.Index().SetName("deliveryDate_school_index"),
	}

	log.Println("EnsureMealIndexes: creating orderId_index and deliveryDate_school_index")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{orderIndex, runSheetIndex})
	if err != nil {
		log.Println("EnsureMealIndexes: index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	log.Println("EnsureOrderIndexes: creating userId_index index")
	_, err := indexes.CreateOne(ctx, userIDIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	return nil
}

func EnsureMenuItemIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("menu_items").Indexes()

	typeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}},
		Options: options.Index().SetName("type_index"),
	}

	log.Println("EnsureMenuItemIndexes: creating type_index")
	_, err := indexes.CreateOne(ctx, typeIndex)
	if err != nil {
		log.Println("EnsureMenuItemIndexes: type index error:", err)
		return err
	}
	return nil
}
