package services

import (
	"context"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipKind 用户-菜谱集合：收藏或购物车
type MembershipKind int

const (
	Favorites MembershipKind = iota
	ShoppingCart
)

func (k MembershipKind) String() string {
	if k == ShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

func (k MembershipKind) model() interface{} {
	if k == ShoppingCart {
		return &models.Cart{}
	}
	return &models.Favorite{}
}

func (k MembershipKind) newRow(userID, recipeID uint) interface{} {
	if k == ShoppingCart {
		return &models.Cart{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Add 幂等加入集合：依赖 (user_id, recipe_id) 唯一索引，冲突时什么都不做
func (s *MembershipService) Add(ctx context.Context, kind MembershipKind, user *models.User, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		return nil, notFound("recipe", err)
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(kind.newRow(user.ID, recipe.ID)).Error
	if err != nil {
		return nil, fmt.Errorf("add to %s: %w", kind, err)
	}
	return &recipe, nil
}

// Remove 从集合移除；菜谱或成员关系不存在时返回 ErrNotFound
func (s *MembershipService) Remove(ctx context.Context, kind MembershipKind, user *models.User, recipeID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("load recipe: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("recipe %w", ErrNotFound)
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", user.ID, recipeID).
		Delete(kind.model())
	if res.Error != nil {
		return fmt.Errorf("remove from %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe is not in %s: %w", kind, ErrNotFound)
	}
	return nil
}

// Members 批量查询一页菜谱中哪些在集合内；匿名用户返回空集合
func (s *MembershipService) Members(ctx context.Context, kind MembershipKind, user *models.User, recipeIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if user == nil || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(kind.model()).
		Where("user_id = ? AND recipe_id IN ?", user.ID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
