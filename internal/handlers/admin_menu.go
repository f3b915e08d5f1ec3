package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type MenuItemUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	Type        *string   `json:"type"`
	Description *string   `json:"description"`
	Allergens   *[]string `json:"allergens"`
	IsActive    *bool     `json:"isActive"`
	IsFeatured  *bool     `json:"isFeatured"`
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllMenuItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if itemType := strings.ToLower(strings.TrimSpace(c.Query("type"))); itemType != "" {
			if !validMenuType(itemType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
				return
			}
			filter["type"] = itemType
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
			filter["isActive"] = strings.EqualFold(isActive, "true")
		}

		ctx := context.Background()

		total, err := db.Collection("menu_items").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("menu_items").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		items, err := decodeMenuItems(ctx, cursor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": items,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "multipart/form-data required"})
			return
		}

		input, err := parseMultipartMenuItemRequest(c)
		if err != nil {
			log.Println("[MENU] [ERROR] create multipart error:", err)
			respondMultipartError(c, err)
			return
		}

		name := strings.TrimSpace(input.Name)
		if !input.NameSet || name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		if !input.PriceSet || input.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}

		itemType := models.MenuTypeMain
		if input.TypeSet {
			if !validMenuType(input.Type) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
				return
			}
			itemType = input.Type
		}

		isActive := true
		if input.IsActiveSet {
			isActive = input.IsActive
		}

		isFeatured := false
		if input.IsFeaturedSet {
			isFeatured = input.IsFeatured
		}

		item := models.MenuItem{
			Name:        name,
			Price:       input.Price,
			Type:        itemType,
			Description: strings.TrimSpace(input.Description),
			Allergens:   normalizeAllergens(input.Allergens),
			ImagePath:   input.ImagePath,
			IsActive:    isActive,
			IsFeatured:  isFeatured,
			IsDeleted:   false,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("menu_items").InsertOne(context.Background(), item)
		if err != nil {
			log.Println("[MENU] [ERROR] create insert error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		item.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, item)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		removeImage := false
		if removeRaw := strings.TrimSpace(c.Query("removeImage")); removeRaw != "" {
			parsedRemove, err := strconv.ParseBool(removeRaw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "removeImage must be boolean"})
				return
			}
			removeImage = parsedRemove
		}

		var existing models.MenuItem
		err = db.Collection("menu_items").FindOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
		).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		existingImagePath := strings.TrimSpace(existing.ImagePath)

		updateSet := bson.M{}
		updateUnset := bson.M{}
		newImagePath := ""

		if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			input, err := parseMultipartMenuItemRequest(c)
			if err != nil {
				log.Println("[MENU] [ERROR] update multipart error:", err)
				respondMultipartError(c, err)
				return
			}

			if input.NameSet {
				name := strings.TrimSpace(input.Name)
				if name == "" {
					c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
					return
				}
				updateSet["name"] = name
			}
			if input.PriceSet {
				if input.Price <= 0 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
					return
				}
				updateSet["price"] = input.Price
			}
			if input.TypeSet {
				if !validMenuType(input.Type) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
					return
				}
				updateSet["type"] = input.Type
			}
			if input.DescriptionSet {
				updateSet["description"] = strings.TrimSpace(input.Description)
			}
			if input.AllergensSet {
				updateSet["allergens"] = normalizeAllergens(input.Allergens)
			}
			if input.ImageSet && strings.TrimSpace(input.ImagePath) != "" {
				updateSet["imagePath"] = input.ImagePath
				newImagePath = input.ImagePath
			} else if removeImage {
				updateUnset["imagePath"] = ""
			}
			if input.IsActiveSet {
				updateSet["isActive"] = input.IsActive
			}
			if input.IsFeaturedSet {
				updateSet["isFeatured"] = input.IsFeatured
			}
		} else {
			var req MenuItemUpdateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
				return
			}

			if req.Name != nil {
				name := strings.TrimSpace(*req.Name)
				if name == "" {
					c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
					return
				}
				updateSet["name"] = name
			}
			if req.Price != nil {
				if *req.Price <= 0 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
					return
				}
				updateSet["price"] = *req.Price
			}
			if req.Type != nil {
				itemType := strings.ToLower(strings.TrimSpace(*req.Type))
				if !validMenuType(itemType) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type"})
					return
				}
				updateSet["type"] = itemType
			}
			if req.Description != nil {
				updateSet["description"] = strings.TrimSpace(*req.Description)
			}
			if req.Allergens != nil {
				updateSet["allergens"] = normalizeAllergens(*req.Allergens)
			}
			if req.IsActive != nil {
				updateSet["isActive"] = *req.IsActive
			}
			if req.IsFeatured != nil {
				updateSet["isFeatured"] = *req.IsFeatured
			}
			if removeImage {
				updateUnset["imagePath"] = ""
			}
		}

		if len(updateSet) == 0 && len(updateUnset) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		update := bson.M{}
		if len(updateSet) > 0 {
			update["$set"] = updateSet
		}
		if len(updateUnset) > 0 {
			update["$unset"] = updateUnset
		}

		result, err := db.Collection("menu_items").UpdateOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			update,
		)
		if err != nil {
			log.Println("[MENU] [ERROR] update error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}

		if newImagePath != "" && existingImagePath != "" && existingImagePath != newImagePath {
			if err := safeDeleteUpload(existingImagePath); err != nil {
				log.Printf("[MENU] [ERROR] old image delete failed: %v", err)
			}
		} else if removeImage && existingImagePath != "" {
			if err := safeDeleteUpload(existingImagePath); err != nil {
				log.Printf("[MENU] [ERROR] removeImage delete failed: %v", err)
			}
		}

		var updated models.MenuItem
		err = db.Collection("menu_items").FindOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
		).Decode(&updated)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		now := time.Now()

		var existing models.MenuItem
		err = db.Collection("menu_items").FindOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
		).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		res, err := db.Collection("menu_items").UpdateOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"deletedAt": now,
				"isActive":  false,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}

		if err := safeDeleteUpload(existing.ImagePath); err != nil {
			log.Printf("[MENU] [ERROR] image delete failed: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}
