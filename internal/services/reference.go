package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/utils"

	"gorm.io/gorm"
)

const tagsCacheKey = "tags:all"

// ReferenceService 标签与食材的只读查询
type ReferenceService struct {
	db    *gorm.DB
	cache *utils.Cache
	ttl   time.Duration
}

func NewReferenceService(db *gorm.DB, cache *utils.Cache) *ReferenceService {
	return &ReferenceService{db: db, cache: cache, ttl: 5 * time.Minute}
}

// Tags 全部标签，按 ID 排序并缓存
func (s *ReferenceService) Tags(ctx context.Context) ([]models.Tag, error) {
	if cached, ok := s.cache.Get(tagsCacheKey).([]models.Tag); ok {
		return cached, nil
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	s.cache.Set(tagsCacheKey, tags, s.ttl)
	return tags, nil
}

func (s *ReferenceService) Tag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound("tag", err)
	}
	return &tag, nil
}

// Ingredients 名称包含 name（不区分大小写）的食材
func (s *ReferenceService) Ingredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if name = strings.TrimSpace(name); name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(name))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *ReferenceService) Ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound("ingredient", err)
	}
	return &ingredient, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
