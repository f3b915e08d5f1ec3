package handlers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/orderid"
)

/*
GET /admin/orders
- Paginated, newest first, optional ?userId= and ?status= filters
*/
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{}
		if userHex := strings.TrimSpace(c.Query("userId")); userHex != "" {
			userID, err := primitive.ObjectIDFromHex(userHex)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
				return
			}
			filter["userId"] = userID
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx := context.Background()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
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

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
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
GET /admin/orders/:id
- Order with its meal records
*/
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := strings.TrimSpace(c.Param("id"))
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		cursor, err := db.Collection("meals").Find(ctx, bson.M{"orderId": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		meals := []models.MealRecord{}
		if err := cursor.All(ctx, &meals); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order, "meals": meals})
	}
}

/*
DELETE /admin/orders/:id
- Removes the order, its meals and the user's history entry in one
  transaction so the three collections never disagree
*/
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := strings.TrimSpace(c.Param("id"))
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			if _, err := db.Collection("orders").DeleteOne(sessCtx, bson.M{"_id": orderID}); err != nil {
				return nil, err
			}
			if _, err := db.Collection("meals").DeleteMany(sessCtx, bson.M{"orderId": orderID}); err != nil {
				return nil, err
			}
			if _, err := db.Collection("users").UpdateByID(sessCtx, order.UserID, bson.M{
				"$pull": bson.M{"orders": bson.M{"orderId": orderID}},
				"$set":  bson.M{"updatedAt": time.Now()},
			}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			log.Println("[ORDER] [ERROR] delete transaction failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[ORDER] [INFO] order removed:", orderID)
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

/* =========================
   MANUAL ORDERS
========================= */

type manualOrderRequest struct {
	UserID string                `json:"userId" binding:"required"`
	Meals  []checkoutMealRequest `json:"meals" binding:"required,min=1,dive"`
	Note   string                `json:"note"`
}

/*
POST /admin/orders
- Back-office order entered without a payment session (cash, bank
  transfer, staff comps). Writes the same permanent records as the
  payment flow; there is no pending order to consume.
*/
func CreateManualOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/orders"
		defer handlePanic(c, route)

		var req manualOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		childByID := make(map[string]models.Child, len(user.Children))
		for _, child := range user.Children {
			childByID[child.ID] = child
		}

		items, err := lookupMenuItems(ctx, db, collectMenuItemIDs(req.Meals))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		selections := make([]models.MealSelection, 0, len(req.Meals))
		var subtotal float64
		for i, mealReq := range req.Meals {
			selection, err := buildMealSelection(ctx, db, mealReq, childByID, items)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("meal %d: %s", i+1, err.Error()))
				return
			}
			selections = append(selections, selection)
			subtotal += selection.LineTotal
		}
		subtotal = roundCurrency(subtotal)

		now := time.Now()
		orderID, err := orderid.New(now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "order id generation failed")
			return
		}

		pending := models.PendingOrder{
			UserID:    userID,
			UserEmail: user.Email,
			Meals:     selections,
			Pricing:   models.PricingSummary{Subtotal: subtotal, FinalTotal: subtotal},
			CreatedAt: now,
		}

		payment := models.PaymentSummary{
			Method: "manual",
			PaidAt: now,
			Amount: subtotal,
		}

		order, meals, summary := expandPendingOrder(pending, orderID, payment, now)

		if err := newOrderStore(db).CommitOrder(ctx, order, meals, summary, nil); err != nil {
			log.Println("[ORDER] [ERROR] manual order commit failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[ORDER] [INFO] manual order %s entered for user %s (%d meals)",
			orderID, userID.Hex(), len(meals))

		c.JSON(http.StatusCreated, gin.H{
			"orderId": orderID,
			"mealIds": order.MealIDs,
			"total":   subtotal,
		})
	}
}

/*
GET /admin/runsheet?date=2006-01-02&schoolId=...
- All meals to prepare for a delivery date, grouped by school
*/
func GetRunSheet(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := strings.TrimSpace(c.Query("date"))
		if date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
			return
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		filter := bson.M{"deliveryDate": date}
		if schoolID := strings.TrimSpace(c.Query("schoolId")); schoolID != "" {
			filter["school.id"] = schoolID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		cursor, err := db.Collection("meals").Find(ctx, filter,
			options.Find().SetSort(bson.D{
				{Key: "school.name", Value: 1},
				{Key: "recipient.name", Value: 1},
			}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		meals := []models.MealRecord{}
		if err := cursor.All(ctx, &meals); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		bySchool := map[string][]models.MealRecord{}
		schoolNames := []string{}
		for _, meal := range meals {
			if _, ok := bySchool[meal.School.Name]; !ok {
				schoolNames = append(schoolNames, meal.School.Name)
			}
			bySchool[meal.School.Name] = append(bySchool[meal.School.Name], meal)
		}

		groups := make([]gin.H, 0, len(schoolNames))
		for _, name := range schoolNames {
			groups = append(groups, gin.H{
				"school": name,
				"count":  len(bySchool[name]),
				"meals":  bySchool[name],
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"date":    date,
			"total":   len(meals),
			"schools": groups,
		})
	}
}
