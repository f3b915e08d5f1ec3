package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

const sweepBatchSize = 200

// CleanupExpiredPendingOrders deletes pending orders whose expiry has
// passed, in bounded batches so an abandoned-cart backlog cannot pin the
// collection. Returns the number removed.
func CleanupExpiredPendingOrders(ctx context.Context, db *mongo.Database, batchSize int64) (int64, error) {
	var removed int64

	for {
		cursor, err := db.Collection("pending_orders").Find(
			ctx,
			bson.M{"expiresAt": bson.M{"$lt": time.Now()}},
			options.Find().
				SetLimit(batchSize).
				SetProjection(bson.M{"_id": 1}),
		)
		if err != nil {
			return removed, err
		}

		var batch []models.PendingOrder
		if err := cursor.All(ctx, &batch); err != nil {
			return removed, err
		}
		if len(batch) == 0 {
			return removed, nil
		}

		ids := make([]interface{}, 0, len(batch))
		for _, pending := range batch {
			ids = append(ids, pending.ID)
		}

		res, err := db.Collection("pending_orders").DeleteMany(ctx, bson.M{
			"_id": bson.M{"$in": ids},
		})
		if err != nil {
			return removed, err
		}
		removed += res.DeletedCount

		if int64(len(batch)) < batchSize {
			return removed, nil
		}
	}
}

// SweepExpiredOrders is the admin endpoint the platform scheduler calls.
func SweepExpiredOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/pending-orders/sweep"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		removed, err := CleanupExpiredPendingOrders(ctx, db, sweepBatchSize)
		if err != nil {
			log.Printf("[SWEEP] [ERROR] cleanup failed after removing %d: %v", removed, err)
			respondWithError(c, http.StatusInternalServerError, route, "sweep failed")
			return
		}

		log.Printf("[SWEEP] [INFO] removed %d expired pending orders", removed)
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}
