package handlers

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
GET /menu
- Active items only, optional ?type= and ?search= filters
- Pagination is optional: without ?page the whole menu is returned so
  the ordering flow can render it in one request
*/
func GetMenu(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{
			"isActive":  true,
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

		ctx := context.Background()

		opts := options.Find().
			SetSort(bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}})

		paginated := strings.TrimSpace(c.Query("page")) != "" ||
			strings.TrimSpace(c.Query("limit")) != ""

		if !paginated {
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

			c.JSON(http.StatusOK, gin.H{"data": items})
			return
		}

		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		total, err := db.Collection("menu_items").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts = opts.SetSkip((page - 1) * limit).SetLimit(limit)

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

/*
GET /menu/featured
*/
func GetFeaturedItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		cursor, err := db.Collection("menu_items").Find(ctx, bson.M{
			"isActive":   true,
			"isFeatured": true,
			"isDeleted":  bson.M{"$ne": true},
		}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
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

		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}
