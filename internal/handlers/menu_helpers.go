package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// normalizeMenuItemDocument papers over legacy documents: allergens
// stored as a single string and items imported before type existed.
func normalizeMenuItemDocument(raw bson.M) (models.MenuItem, error) {
	if allergen, ok := raw["allergens"].(string); ok {
		raw["allergens"] = []string{allergen}
	}

	if val, ok := raw["type"]; ok {
		if typed, isString := val.(string); !isString || typed == "" {
			raw["type"] = models.MenuTypeMain
		}
	} else {
		raw["type"] = models.MenuTypeMain
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.MenuItem{}, err
	}

	var item models.MenuItem
	if err := bson.Unmarshal(data, &item); err != nil {
		return models.MenuItem{}, err
	}

	return item, nil
}

func decodeMenuItems(ctx context.Context, cursor *mongo.Cursor) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		item, err := normalizeMenuItemDocument(raw)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func validMenuType(t string) bool {
	switch t {
	case models.MenuTypeMain, models.MenuTypeAddOn, models.MenuTypeFruit, models.MenuTypeSide:
		return true
	}
	return false
}
