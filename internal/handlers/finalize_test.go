package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

func testPendingOrder() models.PendingOrder {
	return models.PendingOrder{
		ID:        primitive.NewObjectID(),
		SessionID: "sess_1",
		UserID:    primitive.NewObjectID(),
		UserEmail: "parent@example.com",
		Meals: []models.MealSelection{
			{
				Main:         models.SelectedItem{ID: "item_1", Name: "Chicken Bento", Price: 12.5},
				AddOns:       []models.SelectedItem{{ID: "item_2", Name: "Miso Soup", Price: 2}},
				Fruit:        &models.SelectedItem{ID: "item_3", Name: "Apple Slices", Price: 1.5},
				ChildID:      "child_1",
				ChildName:    "Alex",
				Allergens:    models.StringList{"peanuts"},
				Year:         "3",
				Class:        "3B",
				DeliveryDate: "2025-03-17",
				SchoolID:     "school_1",
				SchoolName:   "Hillside Primary",
				LineTotal:    16,
			},
			{
				Main:         models.SelectedItem{ID: "item_4", Name: "Sushi Pack", Price: 14},
				ChildID:      "child_2",
				ChildName:    "Robin",
				DeliveryDate: "2025-03-18",
				SchoolID:     "school_1",
				SchoolName:   "Hillside Primary",
				LineTotal:    14,
			},
		},
		Pricing:   models.PricingSummary{Subtotal: 30, FinalTotal: 27},
		Status:    "pending",
		CreatedAt: time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestExpandPendingOrderBuildsAllRecords(t *testing.T) {
	pending := testPendingOrder()
	now := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	payment := models.PaymentSummary{SessionID: "sess_1", Method: "card", PaidAt: now, Amount: 27}

	order, meals, summary := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", payment, now)

	if order.ID != "ORD-20250314-ABCDEFGHJ" || order.Status != "paid" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.ItemCount != 2 || len(order.MealIDs) != order.ItemCount {
		t.Fatalf("mealIds/itemCount mismatch: %d ids, itemCount %d", len(order.MealIDs), order.ItemCount)
	}
	if order.TotalAmount != 27 {
		t.Fatalf("expected totalAmount 27, got %v", order.TotalAmount)
	}
	if order.UserEmail != "parent@example.com" {
		t.Fatalf("unexpected userEmail %s", order.UserEmail)
	}

	if len(meals) != 2 {
		t.Fatalf("expected 2 meal records, got %d", len(meals))
	}
	for i, meal := range meals {
		if meal.ID != order.MealIDs[i] {
			t.Fatalf("meal %d id %s does not match order's mealIds entry %s", i, meal.ID, order.MealIDs[i])
		}
		if meal.OrderID != order.ID {
			t.Fatalf("meal %d back-reference %s does not match order id", i, meal.OrderID)
		}
		if meal.UserID != pending.UserID {
			t.Fatalf("meal %d user back-reference mismatch", i)
		}
	}

	first := meals[0]
	if first.Recipient.Name != "Alex" || first.Recipient.Year != "3" || first.Recipient.Class != "3B" {
		t.Fatalf("unexpected recipient %+v", first.Recipient)
	}
	if first.School.Name != "Hillside Primary" || first.DeliveryDate != "2025-03-17" {
		t.Fatalf("unexpected delivery details %+v", first)
	}
	if first.OrderedAt != pending.CreatedAt {
		t.Fatalf("expected orderedAt to carry the checkout time")
	}

	if summary.OrderID != order.ID || summary.ItemCount != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.TotalPaid != 27 {
		t.Fatalf("expected summary totalPaid from pending pricing, got %v", summary.TotalPaid)
	}
}

func TestExpandPendingOrderMealIDsSequential(t *testing.T) {
	pending := testPendingOrder()
	now := time.Now()
	payment := models.PaymentSummary{Amount: 27}

	order, _, _ := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", payment, now)

	want := []string{
		"ORD-20250314-ABCDEFGHJ-001",
		"ORD-20250314-ABCDEFGHJ-002",
	}
	for i, id := range order.MealIDs {
		if id != want[i] {
			t.Fatalf("mealIds[%d] = %s, want %s", i, id, want[i])
		}
	}

	// identical inputs, identical ids
	again, _, _ := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", payment, now)
	for i := range order.MealIDs {
		if order.MealIDs[i] != again.MealIDs[i] {
			t.Fatal("expansion is not deterministic")
		}
	}
}

func TestExpandPendingOrderDefaultsOptionalFields(t *testing.T) {
	pending := testPendingOrder()
	pending.Meals = []models.MealSelection{
		{
			Main:         models.SelectedItem{ID: "item_1", Name: "Chicken Bento", Price: 12.5},
			ChildID:      "child_1",
			ChildName:    "Alex",
			DeliveryDate: "2025-03-17",
			SchoolID:     "school_1",
			SchoolName:   "Hillside Primary",
			LineTotal:    12.5,
		},
	}

	_, meals, _ := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", models.PaymentSummary{}, time.Now())

	meal := meals[0]
	if meal.Fruit != nil || meal.Side != nil {
		t.Fatalf("expected nil fruit and side, got %+v", meal)
	}
	if meal.AddOns == nil || len(meal.AddOns) != 0 {
		t.Fatalf("expected empty addOns slice, got %#v", meal.AddOns)
	}
	if meal.Recipient.Allergens == nil || len(meal.Recipient.Allergens) != 0 {
		t.Fatalf("expected empty allergens, got %#v", meal.Recipient.Allergens)
	}
	if meal.Recipient.IsTeacher {
		t.Fatal("expected isTeacher to default to false")
	}
}

func TestExpandPendingOrderPaymentFromCapturedMinorUnits(t *testing.T) {
	pending := testPendingOrder()
	now := time.Now()
	payment := models.PaymentSummary{
		SessionID: pending.SessionID,
		Method:    "card",
		PaidAt:    now,
		Amount:    amountFromMinorUnits(2700),
	}

	order, _, _ := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", payment, now)

	if order.Payment.Amount != 27 {
		t.Fatalf("expected payment amount 27, got %v", order.Payment.Amount)
	}
	if order.Payment.SessionID != "sess_1" {
		t.Fatalf("expected payment to reference session, got %+v", order.Payment)
	}
}

func TestFinalizationErrorMessages(t *testing.T) {
	if msg := (noPendingOrderError{SessionID: "sess_1"}).Error(); msg == "" {
		t.Fatal("expected message")
	}
	if msg := (duplicatePendingOrderError{SessionID: "sess_1", Count: 2}).Error(); msg == "" {
		t.Fatal("expected message")
	}
	if msg := (pendingOrderConflictError{SessionID: "sess_1"}).Error(); msg == "" {
		t.Fatal("expected message")
	}
}

/* =========================
   IN-MEMORY STORE
========================= */

// memoryOrderStore implements orderStore with the same commit contract as
// the mongo implementation: all-or-nothing, with the pending consumption
// acting as the check-and-set.
type memoryOrderStore struct {
	pending map[string][]models.PendingOrder
	orders  map[string]models.Order
	meals   map[string]models.MealRecord
	history map[string][]models.OrderSummary
}

func newMemoryOrderStore(seed ...models.PendingOrder) *memoryOrderStore {
	s := &memoryOrderStore{
		pending: map[string][]models.PendingOrder{},
		orders:  map[string]models.Order{},
		meals:   map[string]models.MealRecord{},
		history: map[string][]models.OrderSummary{},
	}
	for _, p := range seed {
		s.pending[p.SessionID] = append(s.pending[p.SessionID], p)
	}
	return s
}

func (s *memoryOrderStore) CountPendingOrders(_ context.Context, sessionID string) (int64, error) {
	return int64(len(s.pending[sessionID])), nil
}

func (s *memoryOrderStore) GetPendingOrder(_ context.Context, sessionID string) (models.PendingOrder, error) {
	list := s.pending[sessionID]
	if len(list) == 0 {
		return models.PendingOrder{}, mongo.ErrNoDocuments
	}
	return list[0], nil
}

func (s *memoryOrderStore) CommitOrder(_ context.Context, order models.Order, meals []models.MealRecord, summary models.OrderSummary, pending *models.PendingOrder) error {
	// the check-and-set runs before any write so a conflict leaves the
	// store untouched, matching the transaction's all-or-nothing contract
	if pending != nil {
		list := s.pending[pending.SessionID]
		index := -1
		for i, candidate := range list {
			if candidate.ID == pending.ID {
				index = i
				break
			}
		}
		if index == -1 {
			return pendingOrderConflictError{SessionID: pending.SessionID}
		}
		s.pending[pending.SessionID] = append(list[:index], list[index+1:]...)
	}

	s.orders[order.ID] = order
	for _, meal := range meals {
		s.meals[meal.ID] = meal
	}
	key := order.UserID.Hex()
	s.history[key] = append(s.history[key], summary)
	return nil
}

/* =========================
   WORKFLOW TESTS
========================= */

func TestFindPendingOrderNoMatch(t *testing.T) {
	store := newMemoryOrderStore()

	_, err := findPendingOrder(context.Background(), store, "sess_missing")

	var missing noPendingOrderError
	if !errors.As(err, &missing) {
		t.Fatalf("expected noPendingOrderError, got %v", err)
	}
	if missing.SessionID != "sess_missing" {
		t.Fatalf("unexpected session in error: %+v", missing)
	}
}

func TestFindPendingOrderDuplicateSessions(t *testing.T) {
	first := testPendingOrder()
	second := testPendingOrder()
	second.ID = primitive.NewObjectID()
	store := newMemoryOrderStore(first, second)

	_, err := findPendingOrder(context.Background(), store, "sess_1")

	var dup duplicatePendingOrderError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicatePendingOrderError, got %v", err)
	}
	if dup.Count != 2 {
		t.Fatalf("expected count 2, got %d", dup.Count)
	}
}

func TestCommitOrderWritesAllRecordsAndConsumesPending(t *testing.T) {
	pending := testPendingOrder()
	store := newMemoryOrderStore(pending)
	now := time.Now()

	found, err := findPendingOrder(context.Background(), store, "sess_1")
	if err != nil {
		t.Fatalf("findPendingOrder returned error: %v", err)
	}

	payment := models.PaymentSummary{SessionID: "sess_1", Method: "card", PaidAt: now, Amount: 27}
	order, meals, summary := expandPendingOrder(found, "ORD-20250314-ABCDEFGHJ", payment, now)

	if err := store.CommitOrder(context.Background(), order, meals, summary, &found); err != nil {
		t.Fatalf("CommitOrder returned error: %v", err)
	}

	if _, ok := store.orders[order.ID]; !ok {
		t.Fatal("order not written")
	}
	for _, id := range order.MealIDs {
		if _, ok := store.meals[id]; !ok {
			t.Fatalf("meal %s not written", id)
		}
	}
	if len(store.history[order.UserID.Hex()]) != 1 {
		t.Fatal("history entry not appended")
	}
	if len(store.pending["sess_1"]) != 0 {
		t.Fatal("pending order not consumed")
	}
}

func TestReplayAfterCommitFailsWithoutPartialWrites(t *testing.T) {
	pending := testPendingOrder()
	store := newMemoryOrderStore(pending)
	now := time.Now()

	payment := models.PaymentSummary{SessionID: "sess_1", Method: "card", PaidAt: now, Amount: 27}
	order, meals, summary := expandPendingOrder(pending, "ORD-20250314-ABCDEFGHJ", payment, now)
	if err := store.CommitOrder(context.Background(), order, meals, summary, &pending); err != nil {
		t.Fatalf("first commit returned error: %v", err)
	}

	// a replayed delivery no longer finds exactly one pending order
	_, err := findPendingOrder(context.Background(), store, "sess_1")
	var missing noPendingOrderError
	if !errors.As(err, &missing) {
		t.Fatalf("expected noPendingOrderError on replay lookup, got %v", err)
	}

	// a racing delivery that read the pending order before the first
	// commit must abort at the check-and-set
	order2, meals2, summary2 := expandPendingOrder(pending, "ORD-20250314-KLMNPQRST", payment, now)
	err = store.CommitOrder(context.Background(), order2, meals2, summary2, &pending)
	var conflict pendingOrderConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected pendingOrderConflictError, got %v", err)
	}

	if len(store.orders) != 1 {
		t.Fatalf("expected 1 order after failed replay, got %d", len(store.orders))
	}
	if len(store.meals) != len(order.MealIDs) {
		t.Fatalf("expected %d meals after failed replay, got %d", len(order.MealIDs), len(store.meals))
	}
	if len(store.history[order.UserID.Hex()]) != 1 {
		t.Fatalf("expected 1 history entry after failed replay, got %d", len(store.history[order.UserID.Hex()]))
	}
	if _, ok := store.orders[order2.ID]; ok {
		t.Fatal("losing commit must not write its order")
	}
}
