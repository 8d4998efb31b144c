package models

import (
	"time"
)

// 烹饪时间与食材数量的取值上限（smallint 正数范围）
const (
	MinSmallPositive = 1
	MaxSmallPositive = 32767
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Image       string    `gorm:"size:255;not null" json:"image"` // 图片存储引用，不是 URL
	CookingTime int       `gorm:"type:smallint;not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time `gorm:"not null;index;autoCreateTime" json:"pub_date"` // 只在创建时写入
	UpdatedAt   time.Time `json:"updated_at"`

	Ingredients []IngredientAmount `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"ingredients"`
	Tags        []TagRecipe        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tags"`
}

// IngredientAmount 菜谱-食材关联，同一菜谱内食材不可重复
type IngredientAmount struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"ingredient"`
	Amount       int        `gorm:"type:smallint;not null;check:chk_ingredient_amounts_amount,amount >= 1" json:"amount"`
}

// TagRecipe 菜谱-标签关联
type TagRecipe struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	RecipeID uint `gorm:"not null;uniqueIndex:idx_recipe_tag" json:"recipe_id"`
	TagID    uint `gorm:"not null;index;uniqueIndex:idx_recipe_tag" json:"tag_id"`
	Tag      Tag  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tag"`
}
