package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// handlePanic converts a handler panic into a plain 500 instead of a
// dropped connection. Deferred at the top of handlers that multi-step
// through the database.
func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[HTTP] [ERROR] %s panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// ensureDBConnection pings the primary with a short deadline before work
// that spans several round trips, so an unreachable database fails fast.
func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[HTTP] [ERROR] %s -> %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
