package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/payments"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutMealRequest struct {
	MainID       string   `json:"mainId" binding:"required"`
	AddOnIDs     []string `json:"addOnIds"`
	FruitID      string   `json:"fruitId"`
	SideID       string   `json:"sideId"`
	ChildID      string   `json:"childId" binding:"required"`
	DeliveryDate string   `json:"deliveryDate" binding:"required,datetime=2006-01-02"`
	SchoolID     string   `json:"schoolId" binding:"required"`
}

type checkoutRequest struct {
	Meals      []checkoutMealRequest `json:"meals" binding:"required,min=1,dive"`
	CouponCode string                `json:"couponCode"`
}

// sessionCreator lets tests substitute the payment client.
type sessionCreator interface {
	CreateCheckoutSession(ctx context.Context, input payments.CreateSessionInput) (payments.CheckoutSession, error)
}

/* =========================
   CREATE CHECKOUT
========================= */

// CreateCheckout prices the cart server-side, opens a payment session and
// writes the matching pending order keyed by the session id. Prices are
// always recomputed from the menu documents, never trusted from the client.
func CreateCheckout(db *mongo.Database, pay sessionCreator, successURL, cancelURL string, pendingTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)
		userEmail := c.GetString("userEmail")

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
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
			log.Println("[CHECKOUT] [ERROR] user lookup failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if userEmail == "" {
			userEmail = user.Email
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

		meals := make([]models.MealSelection, 0, len(req.Meals))
		var subtotal float64

		for i, mealReq := range req.Meals {
			selection, err := buildMealSelection(ctx, db, mealReq, childByID, items)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("meal %d: %s", i+1, err.Error()))
				return
			}
			meals = append(meals, selection)
			subtotal += selection.LineTotal
		}
		subtotal = roundCurrency(subtotal)

		pricing := models.PricingSummary{Subtotal: subtotal, FinalTotal: subtotal}
		if code := strings.ToUpper(strings.TrimSpace(req.CouponCode)); code != "" {
			coupon, err := lookupCoupon(ctx, db, code)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid coupon code")
				return
			}
			finalTotal, discount := applyCoupon(subtotal, coupon)
			pricing.FinalTotal = finalTotal
			pricing.Coupon = &models.CouponInfo{Code: coupon.Code, DiscountAmount: discount}
		}

		session, err := pay.CreateCheckoutSession(ctx, payments.CreateSessionInput{
			CustomerEmail: userEmail,
			SuccessURL:    successURL,
			CancelURL:     cancelURL,
			Lines: []payments.CheckoutLine{{
				Name:     fmt.Sprintf("School lunch order (%d meals)", len(meals)),
				Amount:   toMinorUnits(pricing.FinalTotal),
				Quantity: 1,
			}},
		})
		if err != nil {
			log.Println("[CHECKOUT] [ERROR] session creation failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment session could not be created")
			return
		}

		now := time.Now()
		pending := models.PendingOrder{
			SessionID: session.ID,
			UserID:    userID,
			UserEmail: userEmail,
			Meals:     meals,
			Pricing:   pricing,
			Status:    "pending",
			CreatedAt: now,
			ExpiresAt: now.Add(pendingTTL),
		}

		if _, err := db.Collection("pending_orders").InsertOne(ctx, pending); err != nil {
			log.Println("[CHECKOUT] [ERROR] pending order insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[CHECKOUT] [INFO] session %s opened for user %s (%d meals, total %.2f)",
			session.ID, userID.Hex(), len(meals), pricing.FinalTotal)

		c.JSON(http.StatusCreated, gin.H{
			"sessionId": session.ID,
			"url":       session.URL,
		})
	}
}

/* =========================
   CART RESOLUTION
========================= */

func collectMenuItemIDs(meals []checkoutMealRequest) []string {
	seen := map[string]struct{}{}
	ids := make([]string, 0)

	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, meal := range meals {
		add(meal.MainID)
		for _, addOnID := range meal.AddOnIDs {
			add(addOnID)
		}
		add(meal.FruitID)
		add(meal.SideID)
	}
	return ids
}

func lookupMenuItems(ctx context.Context, db *mongo.Database, ids []string) (map[string]models.MenuItem, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	items := make(map[string]models.MenuItem, len(objectIDs))
	if len(objectIDs) == 0 {
		return items, nil
	}

	cursor, err := db.Collection("menu_items").Find(ctx, bson.M{
		"_id":       bson.M{"$in": objectIDs},
		"isActive":  true,
		"isDeleted": bson.M{"$ne": true},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.MenuItem
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, item := range results {
		items[item.ID.Hex()] = item
	}
	return items, nil
}

func buildMealSelection(ctx context.Context, db *mongo.Database, req checkoutMealRequest, children map[string]models.Child, items map[string]models.MenuItem) (models.MealSelection, error) {
	child, ok := children[strings.TrimSpace(req.ChildID)]
	if !ok {
		return models.MealSelection{}, fmt.Errorf("unknown child")
	}

	main, err := selectedMenuItem(items, req.MainID, models.MenuTypeMain)
	if err != nil {
		return models.MealSelection{}, err
	}

	addOns := make([]models.SelectedItem, 0, len(req.AddOnIDs))
	for _, addOnID := range req.AddOnIDs {
		addOn, err := selectedMenuItem(items, addOnID, models.MenuTypeAddOn)
		if err != nil {
			return models.MealSelection{}, err
		}
		addOns = append(addOns, addOn)
	}

	var fruit, side *models.SelectedItem
	if strings.TrimSpace(req.FruitID) != "" {
		item, err := selectedMenuItem(items, req.FruitID, models.MenuTypeFruit)
		if err != nil {
			return models.MealSelection{}, err
		}
		fruit = &item
	}
	if strings.TrimSpace(req.SideID) != "" {
		item, err := selectedMenuItem(items, req.SideID, models.MenuTypeSide)
		if err != nil {
			return models.MealSelection{}, err
		}
		side = &item
	}

	school, err := lookupSchool(ctx, db, req.SchoolID)
	if err != nil {
		return models.MealSelection{}, err
	}

	allergens := child.Allergens
	if allergens == nil {
		allergens = models.StringList{}
	}

	return models.MealSelection{
		Main:          main,
		AddOns:        addOns,
		Fruit:         fruit,
		Side:          side,
		ChildID:       child.ID,
		ChildName:     child.Name,
		Allergens:     allergens,
		Year:          child.Year,
		Class:         child.Class,
		IsTeacher:     child.IsTeacher,
		DeliveryDate:  req.DeliveryDate,
		SchoolID:      school.ID.Hex(),
		SchoolName:    school.Name,
		SchoolAddress: school.Address,
		LineTotal:     mealLineTotal(main, addOns, fruit, side),
	}, nil
}

func selectedMenuItem(items map[string]models.MenuItem, id, wantType string) (models.SelectedItem, error) {
	item, ok := items[strings.TrimSpace(id)]
	if !ok {
		return models.SelectedItem{}, fmt.Errorf("menu item %s not available", id)
	}
	if item.Type != wantType {
		return models.SelectedItem{}, fmt.Errorf("menu item %s is not a %s", id, wantType)
	}
	return models.SelectedItem{
		ID:    item.ID.Hex(),
		Name:  item.Name,
		Price: item.Price,
	}, nil
}

func lookupSchool(ctx context.Context, db *mongo.Database, id string) (models.School, error) {
	schoolID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return models.School{}, fmt.Errorf("invalid schoolId")
	}

	var school models.School
	err = db.Collection("schools").FindOne(ctx, bson.M{
		"_id":      schoolID,
		"isActive": true,
	}).Decode(&school)
	if err == mongo.ErrNoDocuments {
		return models.School{}, fmt.Errorf("school not available")
	}
	if err != nil {
		return models.School{}, err
	}
	return school, nil
}

func lookupCoupon(ctx context.Context, db *mongo.Database, code string) (models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{
		"code":     code,
		"isActive": true,
	}).Decode(&coupon)
	if err != nil {
		return models.Coupon{}, err
	}
	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return models.Coupon{}, fmt.Errorf("coupon expired")
	}
	return coupon, nil
}
