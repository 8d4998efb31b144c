package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"foodgram/internal/logging"
	"foodgram/internal/models"

	"gorm.io/gorm"
)

// IngredientInput 写入菜谱时的一条食材
type IngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput 创建 / 更新菜谱的请求数据。
// 更新时 nil 或空的标量字段保留原值；食材与标签总是整体替换。
type RecipeInput struct {
	Name        *string           `json:"name"`
	Text        *string           `json:"text"`
	Image       string            `json:"image"`
	CookingTime *int              `json:"cooking_time"`
	Ingredients []IngredientInput `json:"ingredients"`
	Tags        []uint            `json:"tags"`
}

// RecipeFilter 菜谱列表过滤条件
type RecipeFilter struct {
	AuthorID       uint
	TagSlugs       []string
	IsFavorited    bool
	InShoppingCart bool
}

type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

func inSmallRange(n int) bool {
	return n >= models.MinSmallPositive && n <= models.MaxSmallPositive
}

// ValidateRecipeInput 检查与存储无关的规则，creating 为 true 时所有字段必填
func ValidateRecipeInput(in *RecipeInput, creating bool) error {
	if creating {
		switch {
		case in.Name == nil:
			return invalid("name", "this field is required")
		case in.Text == nil:
			return invalid("text", "this field is required")
		case in.CookingTime == nil:
			return invalid("cooking_time", "this field is required")
		case in.Image == "":
			return invalid("image", "this field is required")
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("name", "this field may not be blank")
		}
		if utf8.RuneCountInString(name) > 200 {
			return invalid("name", "ensure this field has no more than 200 characters")
		}
	}
	if in.Text != nil && strings.TrimSpace(*in.Text) == "" {
		return invalid("text", "this field may not be blank")
	}
	if in.CookingTime != nil && !inSmallRange(*in.CookingTime) {
		return invalid("cooking_time", fmt.Sprintf("cooking time must be between %d and %d", models.MinSmallPositive, models.MaxSmallPositive))
	}

	if len(in.Ingredients) == 0 {
		return invalid("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uint]struct{}, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return invalid("ingredients", "ingredients must not repeat")
		}
		seenIngredients[item.ID] = struct{}{}
		if !inSmallRange(item.Amount) {
			return invalid("ingredients", fmt.Sprintf("amount must be between %d and %d", models.MinSmallPositive, models.MaxSmallPositive))
		}
	}

	if len(in.Tags) == 0 {
		return invalid("tags", "at least one tag is required")
	}
	seenTags := make(map[uint]struct{}, len(in.Tags))
	for _, id := range in.Tags {
		if _, dup := seenTags[id]; dup {
			return invalid("tags", "tags must not repeat")
		}
		seenTags[id] = struct{}{}
	}
	return nil
}

// checkReferences 确认所有食材与标签 ID 都存在
func checkReferences(tx *gorm.DB, in *RecipeInput) error {
	ingredientIDs := make([]uint, len(in.Ingredients))
	for i, item := range in.Ingredients {
		ingredientIDs[i] = item.ID
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return fmt.Errorf("check ingredients: %w", err)
	}
	if count != int64(len(ingredientIDs)) {
		return invalid("ingredients", "unknown ingredient id")
	}

	if err := tx.Model(&models.Tag{}).Where("id IN ?", in.Tags).Count(&count).Error; err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if count != int64(len(in.Tags)) {
		return invalid("tags", "unknown tag id")
	}
	return nil
}

// writeRelations 批量写入菜谱的食材与标签行
func writeRelations(tx *gorm.DB, recipeID uint, in *RecipeInput) error {
	amounts := make([]models.IngredientAmount, len(in.Ingredients))
	for i, item := range in.Ingredients {
		amounts[i] = models.IngredientAmount{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount}
	}
	if err := tx.Create(&amounts).Error; err != nil {
		return fmt.Errorf("create ingredient amounts: %w", err)
	}

	tags := make([]models.TagRecipe, len(in.Tags))
	for i, id := range in.Tags {
		tags[i] = models.TagRecipe{RecipeID: recipeID, TagID: id}
	}
	if err := tx.Create(&tags).Error; err != nil {
		return fmt.Errorf("create tag links: %w", err)
	}
	return nil
}

// storeImage 解码并保存图片，返回存储引用
func (s *RecipeService) storeImage(ctx context.Context, payload string) (string, error) {
	img, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}
	return s.images.Save(ctx, img)
}

// discardImage 尽力删除图片，失败只记录日志
func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		logging.Warn().Err(err).Str("image", ref).Msg("Failed to remove image")
	}
}

// Create 在一个事务中写入菜谱、食材与标签
func (s *RecipeService) Create(ctx context.Context, author *models.User, in RecipeInput) (*models.Recipe, error) {
	if err := ValidateRecipeInput(&in, true); err != nil {
		return nil, err
	}

	imageRef, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        strings.TrimSpace(*in.Name),
		Text:        *in.Text,
		AuthorID:    author.ID,
		Image:       imageRef,
		CookingTime: *in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, &in); err != nil {
			return err
		}
		if err := tx.Omit("Ingredients", "Tags", "Author").Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return writeRelations(tx, recipe.ID, &in)
	})
	if err != nil {
		s.discardImage(ctx, imageRef)
		return nil, err
	}

	logging.Info().Uint("recipe", recipe.ID).Uint("author", author.ID).Msg("Recipe created")
	return s.Get(ctx, recipe.ID)
}

// Update 只有作者可以修改；食材与标签先全部删除再重建，整个过程在一个事务内
func (s *RecipeService) Update(ctx context.Context, viewer *models.User, id uint, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound("recipe", err)
	}
	if recipe.AuthorID != viewer.ID {
		return nil, ErrForbidden
	}
	if err := ValidateRecipeInput(&in, false); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}

	var newImage string
	if in.Image != "" {
		ref, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newImage = ref
		updates["image"] = ref
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, &in); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update recipe: %w", err)
			}
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return fmt.Errorf("clear ingredient amounts: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.TagRecipe{}).Error; err != nil {
			return fmt.Errorf("clear tag links: %w", err)
		}
		return writeRelations(tx, recipe.ID, &in)
	})
	if err != nil {
		if newImage != "" {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}
	if newImage != "" {
		s.discardImage(ctx, recipe.Image)
	}

	return s.Get(ctx, recipe.ID)
}

// Delete 只有作者可以删除；关联行由外键级联删除
func (s *RecipeService) Delete(ctx context.Context, viewer *models.User, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return notFound("recipe", err)
	}
	if recipe.AuthorID != viewer.ID {
		return ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 显式删除，不依赖数据库是否开启外键
		for _, model := range []interface{}{&models.IngredientAmount{}, &models.TagRecipe{}, &models.Favorite{}, &models.Cart{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.discardImage(ctx, recipe.Image)
	return nil
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_amounts.id ASC")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tag_recipes.id ASC")
		}).
		Preload("Tags.Tag")
}

// Get 返回带作者、食材与标签的菜谱
func (s *RecipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withDetails(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, notFound("recipe", err)
	}
	return &recipe, nil
}

// List 按发布时间倒序分页；收藏与购物车过滤只对登录用户生效
func (s *RecipeService) List(ctx context.Context, viewer *models.User, f RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Recipe{})
		if f.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			tagged := s.db.Model(&models.TagRecipe{}).
				Select("tag_recipes.recipe_id").
				Joins("JOIN tags ON tags.id = tag_recipes.tag_id").
				Where("tags.slug IN ?", f.TagSlugs)
			q = q.Where("recipes.id IN (?)", tagged)
		}
		if viewer != nil && f.IsFavorited {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
		}
		if viewer != nil && f.InShoppingCart {
			q = q.Where("recipes.id IN (?)", s.db.Model(&models.Cart{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withDetails(base()).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}
