package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type SchoolCreateRequest struct {
	Name         string   `json:"name" binding:"required"`
	Address      string   `json:"address"`
	DeliveryDays []string `json:"deliveryDays"`
	IsActive     *bool    `json:"isActive"`
}

type SchoolUpdateRequest struct {
	Name         *string   `json:"name"`
	Address      *string   `json:"address"`
	DeliveryDays *[]string `json:"deliveryDays"`
	IsActive     *bool     `json:"isActive"`
}

var weekdayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
}

func normalizeDeliveryDays(raw []string) (models.StringList, bool) {
	out := models.StringList{}
	seen := map[string]bool{}
	for _, day := range raw {
		trimmed := strings.TrimSpace(day)
		if trimmed == "" {
			continue
		}
		canonical := strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:])
		if !weekdayNames[canonical] {
			return nil, false
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out, true
}

/*
GET /admin/schools
- All schools, active and inactive
*/
func GetAllSchools(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}

		// ?isActive=true/false
		if v := strings.TrimSpace(c.Query("isActive")); v != "" {
			filter["isActive"] = v == "true"
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}})

		cursor, err := db.Collection("schools").
			Find(context.Background(), filter, opts)
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

/*
POST /admin/schools
- Duplicate names rejected
*/
func CreateSchool(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SchoolCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		days, ok := normalizeDeliveryDays(req.DeliveryDays)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deliveryDays must be school weekdays"})
			return
		}

		// duplicate check
		count, err := db.Collection("schools").CountDocuments(
			context.Background(),
			bson.M{"name": name},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "school already exists"})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		school := models.School{
			Name:         name,
			Address:      strings.TrimSpace(req.Address),
			DeliveryDays: days,
			IsActive:     isActive,
			CreatedAt:    time.Now(),
		}

		result, err := db.Collection("schools").
			InsertOne(context.Background(), school)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		school.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, school)
	}
}

/*
PUT /admin/schools/:id
*/
func UpdateSchool(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req SchoolUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			update["name"] = name
		}

		if req.Address != nil {
			update["address"] = strings.TrimSpace(*req.Address)
		}

		if req.DeliveryDays != nil {
			days, ok := normalizeDeliveryDays(*req.DeliveryDays)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "deliveryDays must be school weekdays"})
				return
			}
			update["deliveryDays"] = days
		}

		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		var updated models.School
		err = db.Collection("schools").
			FindOneAndUpdate(
				context.Background(),
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/schools/:id
- Soft delete
*/
func DeleteSchool(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		result, err := db.Collection("schools").UpdateOne(
			context.Background(),
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"isActive": false}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
