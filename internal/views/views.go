// Package views 把模型投影为 API 响应结构。
//
// 菜谱有三种形态：Full（详情与列表）、Summary（嵌入收藏、购物车、关注列表）、
// 以及写入接口的请求体 services.RecipeInput。所有函数都是纯函数，
// 与查看者相关的布尔值由调用方预先批量查询后传入。
package views

import (
	"time"

	"foodgram/internal/models"
	"foodgram/internal/utils"
)

type User struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type Tag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type Ingredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredient 菜谱中的食材，带冗余的名称与单位
type RecipeIngredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type Recipe struct {
	ID               uint               `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	TextHTML         string             `json:"text_html"`
	CookingTime      int                `json:"cooking_time"`
	PubDate          time.Time          `json:"pub_date"`
}

type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Subscription 关注列表中的作者
type Subscription struct {
	User
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// RecipeFlags 与查看者相关的菜谱状态，匿名用户全部为 false
type RecipeFlags struct {
	Favorited bool
	InCart    bool
}

// ImageURL 把存储引用转换为访问地址
type ImageURL func(ref string) string

func NewUser(u *models.User, subscribed bool) User {
	return User{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func NewTag(t *models.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func NewTags(tags []models.Tag) []Tag {
	out := make([]Tag, len(tags))
	for i := range tags {
		out[i] = NewTag(&tags[i])
	}
	return out
}

func NewIngredient(i *models.Ingredient) Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func NewIngredients(items []models.Ingredient) []Ingredient {
	out := make([]Ingredient, len(items))
	for i := range items {
		out[i] = NewIngredient(&items[i])
	}
	return out
}

// NewRecipe 完整视图；r 需要预加载 Author、Ingredients.Ingredient 与 Tags.Tag
func NewRecipe(r *models.Recipe, imageURL ImageURL, flags RecipeFlags, authorSubscribed bool) Recipe {
	ingredients := make([]RecipeIngredient, len(r.Ingredients))
	for i, row := range r.Ingredients {
		ingredients[i] = RecipeIngredient{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		}
	}

	tags := make([]Tag, len(r.Tags))
	for i := range r.Tags {
		tags[i] = NewTag(&r.Tags[i].Tag)
	}

	return Recipe{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUser(&r.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InCart,
		Name:             r.Name,
		Image:            imageURL(r.Image),
		Text:             r.Text,
		TextHTML:         utils.RenderMarkdown(r.Text),
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}

func NewRecipeSummary(r *models.Recipe, imageURL ImageURL) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       imageURL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func NewRecipeSummaries(recipes []models.Recipe, imageURL ImageURL) []RecipeSummary {
	out := make([]RecipeSummary, len(recipes))
	for i := range recipes {
		out[i] = NewRecipeSummary(&recipes[i], imageURL)
	}
	return out
}

// NewSubscription 关注列表项；被关注者对查看者而言总是已关注
func NewSubscription(author *models.User, recipes []RecipeSummary, count int64) Subscription {
	if recipes == nil {
		recipes = []RecipeSummary{}
	}
	return Subscription{
		User:         NewUser(author, true),
		Recipes:      recipes,
		RecipesCount: count,
	}
}
