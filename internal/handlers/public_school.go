package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/*
GET /schools
- Active schools only, for the ordering flow
*/
func GetSchools(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}})

		cursor, err := db.Collection("schools").
			Find(context.Background(), bson.M{"isActive": true}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(context.Background())

		var schools []models.School
		if err := cursor.All(context.Background(), &schools); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": schools,
		})
	}
}
