package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type ChildRequest struct {
	Name      string   `json:"name" binding:"required"`
	Allergens []string `json:"allergens"`
	Year      string   `json:"year"`
	Class     string   `json:"class"`
	IsTeacher bool     `json:"isTeacher"`
}

type ChildUpdateRequest struct {
	Name      *string   `json:"name"`
	Allergens *[]string `json:"allergens"`
	Year      *string   `json:"year"`
	Class     *string   `json:"class"`
	IsTeacher *bool     `json:"isTeacher"`
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	id, ok := raw.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":       user.ID.Hex(),
			"email":    user.Email,
			"name":     user.Name,
			"phone":    user.Phone,
			"role":     user.Role,
			"children": user.Children,
		})
	}
}

func GetChildren(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID},
			options.FindOne().SetProjection(bson.M{"children": 1})).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		if user.Children == nil {
			user.Children = []models.Child{}
		}
		c.JSON(http.StatusOK, gin.H{"children": user.Children})
	}
}

func AddChild(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req ChildRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		child := models.Child{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(req.Name),
			Allergens: normalizeAllergens(req.Allergens),
			Year:      strings.TrimSpace(req.Year),
			Class:     strings.TrimSpace(req.Class),
			IsTeacher: req.IsTeacher,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$push": bson.M{"children": child},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[USER] [ERROR] add child failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"child": child})
	}
}

func UpdateChild(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		childID := c.Param("childId")
		if childID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "childId is required"})
			return
		}

		var req ChildUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
				return
			}
			set["children.$.name"] = name
		}
		if req.Allergens != nil {
			set["children.$.allergens"] = normalizeAllergens(*req.Allergens)
		}
		if req.Year != nil {
			set["children.$.year"] = strings.TrimSpace(*req.Year)
		}
		if req.Class != nil {
			set["children.$.class"] = strings.TrimSpace(*req.Class)
		}
		if req.IsTeacher != nil {
			set["children.$.isTeacher"] = *req.IsTeacher
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateOne(ctx, bson.M{
			"_id":         userID,
			"children.id": childID,
		}, bson.M{"$set": set})
		if err != nil {
			log.Println("[USER] [ERROR] update child failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "child updated"})
	}
}

func DeleteChild(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		childID := c.Param("childId")
		if childID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "childId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"children": bson.M{"id": childID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[USER] [ERROR] delete child failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.ModifiedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "child not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "child removed"})
	}
}

// GetMyOrders returns the embedded order-history summaries, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID},
			options.FindOne().SetProjection(bson.M{"orders": 1})).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		orders := user.Orders
		if orders == nil {
			orders = []models.OrderSummary{}
		}
		for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
			orders[i], orders[j] = orders[j], orders[i]
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// GetMyOrderMeals lists the caller's meal records for a single order so the
// frontend can show per-meal detail beyond the embedded summary.
func GetMyOrderMeals(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		orderID := c.Param("orderId")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{
			"_id":    orderID,
			"userId": userID,
		}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		cursor, err := db.Collection("meals").Find(ctx, bson.M{"orderId": orderID})
		if err != nil {
			log.Println("[USER] [ERROR] meals query failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		meals := []models.MealRecord{}
		if err := cursor.All(ctx, &meals); err != nil {
			log.Println("[USER] [ERROR] meals decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order, "meals": meals})
	}
}

func normalizeAllergens(raw []string) models.StringList {
	out := models.StringList{}
	seen := map[string]bool{}
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
