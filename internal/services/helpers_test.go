package services

import (
	"context"
	"encoding/base64"
	"io/fs"
	"path/filepath"
	"testing"

	"foodgram/internal/db/dbtest"
	"foodgram/internal/models"

	"gorm.io/gorm"
)

// 最小 PNG 文件头，足够通过内容类型检测
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var pngPayload = "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

type fixture struct {
	db      *gorm.DB
	images  *LocalImageStore
	recipes *RecipeService
	members *MembershipService
	follows *FollowService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.New(t)
	images := NewLocalImageStore(t.TempDir(), "/media/")
	return &fixture{
		db:      conn,
		images:  images,
		recipes: NewRecipeService(conn, images),
		members: NewMembershipService(conn),
		follows: NewFollowService(conn),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "unused",
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) ingredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	i := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := f.db.Create(&i).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return i
}

func (f *fixture) recipe(t *testing.T, author *models.User, name string, ingredients []IngredientInput, tags []uint) *models.Recipe {
	t.Helper()
	r, err := f.recipes.Create(context.Background(), author, RecipeInput{
		Name:        strPtr(name),
		Text:        strPtr("Mix and cook."),
		Image:       pngPayload,
		CookingTime: intPtr(15),
		Ingredients: ingredients,
		Tags:        tags,
	})
	if err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	return r
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// storedFiles 媒体目录下的文件数
func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(f.images.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk media root: %v", err)
	}
	return n
}
