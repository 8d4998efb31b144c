package db_test

import (
	"testing"

	"foodgram/internal/db"
	"foodgram/internal/db/dbtest"
	"foodgram/internal/models"
)

func TestOpenSeedsDefaultTags(t *testing.T) {
	conn := dbtest.New(t)

	var tags []models.Tag
	if err := conn.Order("id ASC").Find(&tags).Error; err != nil {
		t.Fatalf("Find tags failed: %v", err)
	}
	if len(tags) != len(db.DefaultTags) {
		t.Fatalf("Expected %d tags, got %d", len(db.DefaultTags), len(tags))
	}
	if tags[0].Slug != "breakfast" {
		t.Errorf("Expected first tag breakfast, got %s", tags[0].Slug)
	}
}

func TestSeedTagsSkipsWhenPresent(t *testing.T) {
	conn := dbtest.New(t)

	extra := []models.Tag{{Name: "Dessert", Color: "#FFFFFF", Slug: "dessert"}}
	if err := db.SeedTags(conn, extra); err != nil {
		t.Fatalf("SeedTags failed: %v", err)
	}

	var count int64
	conn.Model(&models.Tag{}).Count(&count)
	if count != int64(len(db.DefaultTags)) {
		t.Errorf("Expected seeding to be skipped, got %d tags", count)
	}
}

func TestFollowUniquePair(t *testing.T) {
	conn := dbtest.New(t)

	a := models.User{Email: "a@example.com", Username: "a", Password: "x"}
	b := models.User{Email: "b@example.com", Username: "b", Password: "x"}
	conn.Create(&a)
	conn.Create(&b)

	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error; err != nil {
		t.Fatalf("First follow failed: %v", err)
	}
	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error; err == nil {
		t.Error("Expected unique violation on duplicate follow")
	}
	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: a.ID}).Error; err == nil {
		t.Error("Expected check violation on self follow")
	}
}
