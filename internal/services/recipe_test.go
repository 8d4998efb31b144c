package services

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/models"
)

func TestValidateRecipeInput(t *testing.T) {
	valid := func() RecipeInput {
		return RecipeInput{
			Name:        strPtr("Soup"),
			Text:        strPtr("Boil."),
			Image:       pngPayload,
			CookingTime: intPtr(10),
			Ingredients: []IngredientInput{{ID: 1, Amount: 2}},
			Tags:        []uint{1},
		}
	}

	tests := []struct {
		name     string
		mutate   func(in *RecipeInput)
		creating bool
		field    string
	}{
		{"valid", func(in *RecipeInput) {}, true, ""},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, true, "ingredients"},
		{"repeated ingredient", func(in *RecipeInput) {
			in.Ingredients = []IngredientInput{{ID: 1, Amount: 1}, {ID: 1, Amount: 3}}
		}, true, "ingredients"},
		{"zero amount", func(in *RecipeInput) { in.Ingredients[0].Amount = 0 }, true, "ingredients"},
		{"amount too large", func(in *RecipeInput) { in.Ingredients[0].Amount = 32768 }, true, "ingredients"},
		{"no tags", func(in *RecipeInput) { in.Tags = []uint{} }, true, "tags"},
		{"repeated tag", func(in *RecipeInput) { in.Tags = []uint{2, 2} }, true, "tags"},
		{"zero cooking time", func(in *RecipeInput) { in.CookingTime = intPtr(0) }, true, "cooking_time"},
		{"max cooking time", func(in *RecipeInput) { in.CookingTime = intPtr(32767) }, true, ""},
		{"blank name", func(in *RecipeInput) { in.Name = strPtr("   ") }, true, "name"},
		{"missing image on create", func(in *RecipeInput) { in.Image = "" }, true, "image"},
		{"missing image on update", func(in *RecipeInput) { in.Image = "" }, false, ""},
		{"partial update", func(in *RecipeInput) { in.Name, in.Text, in.CookingTime = nil, nil, nil }, false, ""},
		{"missing name on create", func(in *RecipeInput) { in.Name = nil }, true, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := ValidateRecipeInput(&in, tt.creating)

			if tt.field == "" {
				if err != nil {
					t.Fatalf("Expected valid input, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "cook")
	beet := f.ingredient(t, "Beet", "pcs")
	salt := f.ingredient(t, "Salt", "g")

	r := f.recipe(t, author, "Borscht", []IngredientInput{{ID: salt.ID, Amount: 5}, {ID: beet.ID, Amount: 2}}, []uint{3, 1})

	if r.Author.ID != author.ID {
		t.Errorf("Expected author %d, got %d", author.ID, r.Author.ID)
	}
	if len(r.Ingredients) != 2 || r.Ingredients[0].Ingredient.Name != "Salt" || r.Ingredients[1].Amount != 2 {
		t.Errorf("Unexpected ingredients: %+v", r.Ingredients)
	}
	if len(r.Tags) != 2 || r.Tags[0].Tag.ID != 3 || r.Tags[1].Tag.Slug != "breakfast" {
		t.Errorf("Unexpected tags: %+v", r.Tags)
	}
	if r.Image == "" || f.storedFiles(t) != 1 {
		t.Errorf("Expected stored image, ref=%q files=%d", r.Image, f.storedFiles(t))
	}
	if r.PubDate.IsZero() {
		t.Error("Expected pub_date to be set")
	}
}

func TestCreateRecipeUnknownReferencePersistsNothing(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "cook")
	salt := f.ingredient(t, "Salt", "g")

	tests := []struct {
		name  string
		in    RecipeInput
		field string
	}{
		{"unknown tag", RecipeInput{
			Ingredients: []IngredientInput{{ID: salt.ID, Amount: 1}},
			Tags:        []uint{1, 999},
		}, "tags"},
		{"unknown ingredient", RecipeInput{
			Ingredients: []IngredientInput{{ID: salt.ID, Amount: 1}, {ID: 999, Amount: 1}},
			Tags:        []uint{1},
		}, "ingredients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Name, in.Text, in.CookingTime, in.Image = strPtr("Ghost"), strPtr("Nope."), intPtr(5), pngPayload

			_, err := f.recipes.Create(context.Background(), author, in)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("Expected %s validation error, got %v", tt.field, err)
			}
			if n := f.count(t, &models.Recipe{}); n != 0 {
				t.Errorf("Expected no recipes, got %d", n)
			}
			if n := f.count(t, &models.IngredientAmount{}); n != 0 {
				t.Errorf("Expected no ingredient rows, got %d", n)
			}
			if n := f.storedFiles(t); n != 0 {
				t.Errorf("Expected image to be discarded, got %d files", n)
			}
		})
	}
}

func TestCreateRecipeRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "cook")
	salt := f.ingredient(t, "Salt", "g")

	_, err := f.recipes.Create(context.Background(), author, RecipeInput{
		Name:        strPtr("Text"),
		Text:        strPtr("Not an image."),
		Image:       "data:image/png;base64,aGVsbG8gd29ybGQ=",
		CookingTime: intPtr(5),
		Ingredients: []IngredientInput{{ID: salt.ID, Amount: 1}},
		Tags:        []uint{1},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "image" {
		t.Fatalf("Expected image validation error, got %v", err)
	}
}

func TestUpdateRecipeReplacesRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "cook")
	beet := f.ingredient(t, "Beet", "pcs")
	salt := f.ingredient(t, "Salt", "g")
	created := f.recipe(t, author, "Borscht", []IngredientInput{{ID: beet.ID, Amount: 2}, {ID: salt.ID, Amount: 5}}, []uint{1, 2})

	updated, err := f.recipes.Update(ctx, author, created.ID, RecipeInput{
		Name:        strPtr("Green borscht"),
		Ingredients: []IngredientInput{{ID: salt.ID, Amount: 7}},
		Tags:        []uint{3},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != "Green borscht" {
		t.Errorf("Expected new name, got %s", updated.Name)
	}
	if updated.Text != created.Text || updated.CookingTime != created.CookingTime || updated.Image != created.Image {
		t.Error("Expected omitted fields to keep their values")
	}
	if !updated.PubDate.Equal(created.PubDate) {
		t.Errorf("Expected pub_date %v to stay, got %v", created.PubDate, updated.PubDate)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].IngredientID != salt.ID || updated.Ingredients[0].Amount != 7 {
		t.Errorf("Expected ingredients to be replaced, got %+v", updated.Ingredients)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].TagID != 3 {
		t.Errorf("Expected tags to be replaced, got %+v", updated.Tags)
	}
	if n := f.count(t, &models.IngredientAmount{}); n != 1 {
		t.Errorf("Expected stale ingredient rows to be removed, got %d", n)
	}
}

func TestUpdateRecipeNewImageReplacesOld(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "cook")
	salt := f.ingredient(t, "Salt", "g")
	created := f.recipe(t, author, "Soup", []IngredientInput{{ID: salt.ID, Amount: 1}}, []uint{1})

	updated, err := f.recipes.Update(context.Background(), author, created.ID, RecipeInput{
		Image:       pngPayload,
		Ingredients: []IngredientInput{{ID: salt.ID, Amount: 1}},
		Tags:        []uint{1},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Image == created.Image {
		t.Error("Expected a new image reference")
	}
	if n := f.storedFiles(t); n != 1 {
		t.Errorf("Expected old image to be removed, got %d files", n)
	}
}

func TestUpdateRecipeByOtherUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "cook")
	other := f.user(t, "guest")
	salt := f.ingredient(t, "Salt", "g")
	created := f.recipe(t, author, "Soup", []IngredientInput{{ID: salt.ID, Amount: 1}}, []uint{1})

	_, err := f.recipes.Update(context.Background(), other, created.ID, RecipeInput{
		Name:        strPtr("Stolen"),
		Ingredients: []IngredientInput{{ID: salt.ID, Amount: 9}},
		Tags:        []uint{2},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}

	again, err := f.recipes.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Name != "Soup" || again.Ingredients[0].Amount != 1 || again.Tags[0].TagID != 1 {
		t.Errorf("Expected recipe to be untouched, got %+v", again)
	}

	if _, err := f.recipes.Update(context.Background(), author, 999, RecipeInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing recipe, got %v", err)
	}
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "cook")
	fan := f.user(t, "fan")
	salt := f.ingredient(t, "Salt", "g")
	r := f.recipe(t, author, "Soup", []IngredientInput{{ID: salt.ID, Amount: 1}}, []uint{1})

	if _, err := f.members.Add(ctx, Favorites, fan, r.ID); err != nil {
		t.Fatalf("Add favorite failed: %v", err)
	}
	if err := f.recipes.Delete(ctx, fan, r.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if err := f.recipes.Delete(ctx, author, r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.recipes.Get(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected recipe to be gone, got %v", err)
	}
	for _, model := range []interface{}{&models.Favorite{}, &models.IngredientAmount{}, &models.TagRecipe{}} {
		if n := f.count(t, model); n != 0 {
			t.Errorf("Expected related rows to be removed, %T has %d", model, n)
		}
	}
	if n := f.storedFiles(t); n != 0 {
		t.Errorf("Expected image to be removed, got %d files", n)
	}
	if err := f.recipes.Delete(ctx, author, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListRecipesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook := f.user(t, "cook")
	baker := f.user(t, "baker")
	salt := f.ingredient(t, "Salt", "g")
	items := []IngredientInput{{ID: salt.ID, Amount: 1}}

	breakfast := f.recipe(t, cook, "Porridge", items, []uint{1})
	both := f.recipe(t, cook, "Omelette", items, []uint{1, 2})
	dinner := f.recipe(t, baker, "Pie", items, []uint{3})

	ids := func(recipes []models.Recipe) []uint {
		out := make([]uint, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}
	page := NewPage(1, 10, 6)

	all, total, err := f.recipes.List(ctx, nil, RecipeFilter{}, page)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 || len(all) != 3 || all[0].ID != dinner.ID || all[2].ID != breakfast.ID {
		t.Errorf("Expected newest first, got %v", ids(all))
	}

	tagged, total, _ := f.recipes.List(ctx, nil, RecipeFilter{TagSlugs: []string{"breakfast", "lunch"}}, page)
	if total != 2 || len(tagged) != 2 || tagged[0].ID != both.ID {
		t.Errorf("Expected distinct recipes for any tag, got %v (count %d)", ids(tagged), total)
	}

	byAuthor, total, _ := f.recipes.List(ctx, nil, RecipeFilter{AuthorID: baker.ID}, page)
	if total != 1 || byAuthor[0].ID != dinner.ID {
		t.Errorf("Expected baker's recipe only, got %v", ids(byAuthor))
	}

	if _, err := f.members.Add(ctx, Favorites, baker, breakfast.ID); err != nil {
		t.Fatalf("Add favorite failed: %v", err)
	}
	favorites, total, _ := f.recipes.List(ctx, baker, RecipeFilter{IsFavorited: true}, page)
	if total != 1 || favorites[0].ID != breakfast.ID {
		t.Errorf("Expected favorite recipe only, got %v", ids(favorites))
	}
	anonymous, total, _ := f.recipes.List(ctx, nil, RecipeFilter{IsFavorited: true}, page)
	if total != 3 || len(anonymous) != 3 {
		t.Errorf("Expected favorite filter to be ignored for anonymous viewers, got %v", ids(anonymous))
	}

	second, total, _ := f.recipes.List(ctx, nil, RecipeFilter{}, NewPage(2, 2, 6))
	if total != 3 || len(second) != 1 || second[0].ID != breakfast.ID {
		t.Errorf("Expected last recipe on page 2, got %v", ids(second))
	}
}
