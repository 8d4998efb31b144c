package services

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

const ShoppingListHeader = "Shopping list:"

// ShoppingItem 一行购物清单
type ShoppingItem struct {
	Name   string
	Unit   string
	Amount int
}

// BuildShoppingList 合并同名同单位食材的数量，保持首次出现的顺序。
// 同名但单位不同的食材分别列出，不做单位换算。
func BuildShoppingList(rows []ShoppingItem) []ShoppingItem {
	type key struct{ name, unit string }

	index := make(map[key]int, len(rows))
	items := make([]ShoppingItem, 0, len(rows))
	for _, row := range rows {
		k := key{row.Name, row.Unit}
		if i, ok := index[k]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, row)
	}
	return items
}

// RenderShoppingList 输出纯文本清单：标题行后每个食材一行 "名称 (单位) = 数量"
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n%s (%s) = %d", item.Name, item.Unit, item.Amount)
	}
	return b.String()
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// For 汇总用户购物车中所有菜谱的食材，最新发布的菜谱在前
func (s *ShoppingListService) For(ctx context.Context, user *models.User) ([]ShoppingItem, error) {
	var rows []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, ingredient_amounts.amount AS amount").
		Joins("JOIN recipes ON recipes.id = carts.recipe_id").
		Joins("JOIN ingredient_amounts ON ingredient_amounts.recipe_id = carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("carts.user_id = ?", user.ID).
		Order("recipes.pub_date DESC, recipes.id DESC, ingredient_amounts.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load shopping cart: %w", err)
	}
	return BuildShoppingList(rows), nil
}
