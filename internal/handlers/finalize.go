package handlers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
	"backend/internal/orderid"
)

/* =========================
   FINALIZATION ERRORS
========================= */

type noPendingOrderError struct {
	SessionID string
}

func (e noPendingOrderError) Error() string {
	return fmt.Sprintf("no pending order for session %s", e.SessionID)
}

type duplicatePendingOrderError struct {
	SessionID string
	Count     int64
}

func (e duplicatePendingOrderError) Error() string {
	return fmt.Sprintf("%d pending orders share session %s", e.Count, e.SessionID)
}

// pendingOrderConflictError means the pending order disappeared between the
// lookup and the transactional delete: a concurrent delivery of the same
// event won the race. The losing transaction aborts with no writes.
type pendingOrderConflictError struct {
	SessionID string
}

func (e pendingOrderConflictError) Error() string {
	return fmt.Sprintf("pending order for session %s was already finalized", e.SessionID)
}

/* =========================
   STORE
========================= */

// orderStore is the narrow slice of persistence the finalization workflow
// touches. The mongo implementation below is the production one; tests run
// the same workflow against an in-memory store.
//
// CommitOrder must be atomic: either every record lands and the pending
// order (when given) is consumed, or nothing is written at all. A consumed
// or missing pending order fails the whole commit with
// pendingOrderConflictError.
type orderStore interface {
	CountPendingOrders(ctx context.Context, sessionID string) (int64, error)
	GetPendingOrder(ctx context.Context, sessionID string) (models.PendingOrder, error)
	CommitOrder(ctx context.Context, order models.Order, meals []models.MealRecord, summary models.OrderSummary, pending *models.PendingOrder) error
}

type mongoOrderStore struct {
	db *mongo.Database
}

func newOrderStore(db *mongo.Database) orderStore {
	return &mongoOrderStore{db: db}
}

func (s *mongoOrderStore) CountPendingOrders(ctx context.Context, sessionID string) (int64, error) {
	return s.db.Collection("pending_orders").CountDocuments(ctx, bson.M{"sessionId": sessionID})
}

func (s *mongoOrderStore) GetPendingOrder(ctx context.Context, sessionID string) (models.PendingOrder, error) {
	var pending models.PendingOrder
	err := s.db.Collection("pending_orders").FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&pending)
	return pending, err
}

// CommitOrder writes the order, its meals and the user's history entry, and
// removes the pending order, all in one transaction. When pending is nil
// (manual back-office orders) there is nothing to remove.
//
// The pending delete doubles as the idempotency check-and-set: if a racing
// delivery already consumed the pending order, DeletedCount comes back zero
// and the whole transaction aborts without partial writes.
func (s *mongoOrderStore) CommitOrder(ctx context.Context, order models.Order, meals []models.MealRecord, summary models.OrderSummary, pending *models.PendingOrder) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection("orders").InsertOne(sessCtx, order); err != nil {
			return nil, err
		}

		if _, err := s.db.Collection("users").UpdateByID(sessCtx, order.UserID, bson.M{
			"$push": bson.M{"orders": summary},
			"$set":  bson.M{"updatedAt": order.UpdatedAt},
		}); err != nil {
			return nil, err
		}

		docs := make([]interface{}, 0, len(meals))
		for _, meal := range meals {
			docs = append(docs, meal)
		}
		if len(docs) > 0 {
			if _, err := s.db.Collection("meals").InsertMany(sessCtx, docs); err != nil {
				return nil, err
			}
		}

		if pending != nil {
			res, err := s.db.Collection("pending_orders").DeleteOne(sessCtx, bson.M{
				"_id":       pending.ID,
				"sessionId": pending.SessionID,
			})
			if err != nil {
				return nil, err
			}
			if res.DeletedCount == 0 {
				return nil, pendingOrderConflictError{SessionID: pending.SessionID}
			}
		}

		return nil, nil
	})
	return err
}

/* =========================
   LOOKUP
========================= */

// findPendingOrder fetches the single pending order for a payment session.
// Zero matches means the event beat the checkout write (or the order
// expired); more than one is a data-integrity bug the checkout's unique
// index should make impossible.
func findPendingOrder(ctx context.Context, store orderStore, sessionID string) (models.PendingOrder, error) {
	count, err := store.CountPendingOrders(ctx, sessionID)
	if err != nil {
		return models.PendingOrder{}, err
	}
	if count == 0 {
		return models.PendingOrder{}, noPendingOrderError{SessionID: sessionID}
	}
	if count > 1 {
		return models.PendingOrder{}, duplicatePendingOrderError{SessionID: sessionID, Count: count}
	}

	pending, err := store.GetPendingOrder(ctx, sessionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.PendingOrder{}, noPendingOrderError{SessionID: sessionID}
		}
		return models.PendingOrder{}, err
	}
	return pending, nil
}

/* =========================
   EXPANSION
========================= */

// expandPendingOrder builds the permanent records for a paid pending order.
// Meal ids are derived from the order id and position, so re-running the
// expansion for the same order yields identical ids.
func expandPendingOrder(pending models.PendingOrder, orderID string, payment models.PaymentSummary, now time.Time) (models.Order, []models.MealRecord, models.OrderSummary) {
	meals := make([]models.MealRecord, 0, len(pending.Meals))
	mealIDs := make([]string, 0, len(pending.Meals))

	for i, selection := range pending.Meals {
		mealID := orderid.MealID(orderID, i+1)
		mealIDs = append(mealIDs, mealID)

		addOns := selection.AddOns
		if addOns == nil {
			addOns = []models.SelectedItem{}
		}
		allergens := selection.Allergens
		if allergens == nil {
			allergens = models.StringList{}
		}

		meals = append(meals, models.MealRecord{
			ID:           mealID,
			OrderID:      orderID,
			UserID:       pending.UserID,
			DeliveryDate: selection.DeliveryDate,
			School: models.SchoolInfo{
				ID:      selection.SchoolID,
				Name:    selection.SchoolName,
				Address: selection.SchoolAddress,
			},
			Recipient: models.Recipient{
				ID:        selection.ChildID,
				Name:      selection.ChildName,
				Allergens: allergens,
				Year:      selection.Year,
				Class:     selection.Class,
				IsTeacher: selection.IsTeacher,
			},
			Main:      selection.Main,
			AddOns:    addOns,
			Fruit:     selection.Fruit,
			Side:      selection.Side,
			LineTotal: selection.LineTotal,
			OrderedAt: pending.CreatedAt,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	order := models.Order{
		ID:          orderID,
		UserID:      pending.UserID,
		UserEmail:   pending.UserEmail,
		MealIDs:     mealIDs,
		Pricing:     pending.Pricing,
		Payment:     payment,
		ItemCount:   len(mealIDs),
		TotalAmount: payment.Amount,
		Status:      "paid",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	summary := models.OrderSummary{
		OrderID:   orderID,
		MealIDs:   mealIDs,
		TotalPaid: pending.Pricing.FinalTotal,
		ItemCount: len(mealIDs),
		OrderedOn: now,
	}

	return order, meals, summary
}
