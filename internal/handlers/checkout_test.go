package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

func TestCollectMenuItemIDsDeduplicates(t *testing.T) {
	meals := []checkoutMealRequest{
		{MainID: "a", AddOnIDs: []string{"b", "c"}, FruitID: "d"},
		{MainID: "a", AddOnIDs: []string{"b"}, SideID: "e"},
	}

	ids := collectMenuItemIDs(meals)
	if len(ids) != 5 {
		t.Fatalf("expected 5 unique ids, got %v", ids)
	}
}

func TestCollectMenuItemIDsSkipsBlanks(t *testing.T) {
	meals := []checkoutMealRequest{
		{MainID: "a", FruitID: "", SideID: "  "},
	}

	ids := collectMenuItemIDs(meals)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected only the main id, got %v", ids)
	}
}

func TestSelectedMenuItemChecksType(t *testing.T) {
	id := primitive.NewObjectID()
	items := map[string]models.MenuItem{
		id.Hex(): {ID: id, Name: "Miso Soup", Price: 2, Type: models.MenuTypeAddOn},
	}

	if _, err := selectedMenuItem(items, id.Hex(), models.MenuTypeMain); err == nil {
		t.Fatal("expected type mismatch error")
	}

	item, err := selectedMenuItem(items, id.Hex(), models.MenuTypeAddOn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Name != "Miso Soup" || item.Price != 2 {
		t.Fatalf("unexpected snapshot %+v", item)
	}
}

func TestSelectedMenuItemUnknownID(t *testing.T) {
	if _, err := selectedMenuItem(map[string]models.MenuItem{}, "missing", models.MenuTypeMain); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
