package services

import (
	"context"
	"strings"
	"testing"

	"foodgram/internal/db/dbtest"
	"foodgram/internal/models"
)

func TestImportIngredients(t *testing.T) {
	conn := dbtest.New(t)
	ctx := context.Background()
	data := `[
		{"name": "Salt", "measurement_unit": "g"},
		{"name": "Salt", "measurement_unit": "pinch"},
		{"name": " Beet ", "measurement_unit": "pcs"}
	]`

	created, err := ImportIngredients(ctx, conn, strings.NewReader(data))
	if err != nil {
		t.Fatalf("ImportIngredients failed: %v", err)
	}
	if created != 3 {
		t.Errorf("Expected 3 created, got %d", created)
	}

	again, err := ImportIngredients(ctx, conn, strings.NewReader(data))
	if err != nil || again != 0 {
		t.Errorf("Expected re-import to skip existing rows, got %d (%v)", again, err)
	}

	var beet models.Ingredient
	if err := conn.Where("name = ?", "Beet").First(&beet).Error; err != nil {
		t.Errorf("Expected trimmed name to be stored: %v", err)
	}
}

func TestImportIngredientsRejectsInvalidRows(t *testing.T) {
	conn := dbtest.New(t)
	data := `[{"name": "Salt", "measurement_unit": "g"}, {"name": "", "measurement_unit": "g"}]`

	if _, err := ImportIngredients(context.Background(), conn, strings.NewReader(data)); err == nil {
		t.Fatal("Expected error for blank name")
	}
	var count int64
	conn.Model(&models.Ingredient{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected import to roll back, got %d rows", count)
	}
}

func TestImportTags(t *testing.T) {
	conn := dbtest.New(t)
	ctx := context.Background()

	created, err := ImportTags(ctx, conn, strings.NewReader(`[
		{"name": "Lunch", "color": "#49B64E", "slug": "lunch"},
		{"name": "Dessert", "color": "#ffaa00", "slug": "dessert"}
	]`))
	if err != nil {
		t.Fatalf("ImportTags failed: %v", err)
	}
	if created != 1 {
		t.Errorf("Expected only the new tag to be created, got %d", created)
	}

	var dessert models.Tag
	if err := conn.Where("slug = ?", "dessert").First(&dessert).Error; err != nil {
		t.Fatalf("Expected dessert tag: %v", err)
	}
	if dessert.Color != "#FFAA00" {
		t.Errorf("Expected upper-case color, got %s", dessert.Color)
	}

	if _, err := ImportTags(ctx, conn, strings.NewReader(`[{"name": "Bad", "color": "red", "slug": "bad"}]`)); err == nil {
		t.Error("Expected error for invalid color")
	}
}
