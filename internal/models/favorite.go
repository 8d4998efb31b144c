package models

import (
	"time"
)

// Favorite 收藏 - 用户收藏菜谱
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipe"`
	CreatedAt time.Time `json:"created_at"`
}

// Cart 购物车 - 结构与 Favorite 相同，代表"在购物清单中"
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	RecipeID  uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	Recipe    Recipe    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipe"`
	CreatedAt time.Time `json:"created_at"`
}
