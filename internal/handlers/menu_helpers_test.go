package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"backend/internal/models"
)

func TestNormalizeMenuItemDocument_LegacyAllergenString(t *testing.T) {
	item, err := normalizeMenuItemDocument(bson.M{
		"name":      "Teriyaki Bento",
		"price":     11.0,
		"type":      "main",
		"allergens": "soy",
	})
	if err != nil {
		t.Fatalf("normalizeMenuItemDocument returned error: %v", err)
	}
	if len(item.Allergens) != 1 || item.Allergens[0] != "soy" {
		t.Fatalf("expected allergens [soy], got %v", item.Allergens)
	}
}

func TestNormalizeMenuItemDocument_MissingTypeDefaultsToMain(t *testing.T) {
	item, err := normalizeMenuItemDocument(bson.M{
		"name":  "Old Import",
		"price": 9.5,
	})
	if err != nil {
		t.Fatalf("normalizeMenuItemDocument returned error: %v", err)
	}
	if item.Type != models.MenuTypeMain {
		t.Fatalf("expected default type main, got %q", item.Type)
	}
}

func TestValidMenuType(t *testing.T) {
	for _, valid := range []string{"main", "addon", "fruit", "side"} {
		if !validMenuType(valid) {
			t.Errorf("expected %q to be valid", valid)
		}
	}
	for _, invalid := range []string{"", "Main", "drink"} {
		if validMenuType(invalid) {
			t.Errorf("expected %q to be invalid", invalid)
		}
	}
}

func TestNormalizeDeliveryDays(t *testing.T) {
	days, ok := normalizeDeliveryDays([]string{" monday ", "FRIDAY", "monday"})
	if !ok {
		t.Fatal("expected weekdays to normalize")
	}
	if len(days) != 2 || days[0] != "Monday" || days[1] != "Friday" {
		t.Fatalf("unexpected normalized days: %v", days)
	}

	if _, ok := normalizeDeliveryDays([]string{"Saturday"}); ok {
		t.Fatal("expected weekend day to be rejected")
	}
}
