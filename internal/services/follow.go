package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Subscribe 关注作者，返回被关注的作者
func (s *FollowService) Subscribe(ctx context.Context, user *models.User, authorID uint) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return nil, notFound("user", err)
	}
	if author.ID == user.ID {
		return nil, invalid("non_field_errors", "you cannot subscribe to yourself")
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if count > 0 {
		return nil, invalid("non_field_errors", "you are already subscribed to this author")
	}

	if err := s.db.WithContext(ctx).Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error; err != nil {
		// 并发重复请求由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("non_field_errors", "you are already subscribed to this author")
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &author, nil
}

// Unsubscribe 取消关注；未关注时返回 ErrNotFound
func (s *FollowService) Unsubscribe(ctx context.Context, user *models.User, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", user.ID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription %w", ErrNotFound)
	}
	return nil
}

// List 用户关注的作者，按关注先后排序
func (s *FollowService) List(ctx context.Context, user *models.User, page Page) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.author_id = users.id").
			Where("follows.user_id = ?", user.ID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	var authors []models.User
	err := base().
		Order("follows.id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	return authors, total, nil
}

// Following 批量查询 viewer 关注了哪些用户；匿名用户返回空集合
func (s *FollowService) Following(ctx context.Context, viewer *models.User, authorIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return set, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewer.ID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// AuthorRecipes 作者的最新菜谱（limit <= 0 表示全部）与菜谱总数
func (s *FollowService) AuthorRecipes(ctx context.Context, authorID uint, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	q := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}
