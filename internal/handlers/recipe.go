package handlers

import (
	"context"
	"net/http"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/services"
	"foodgram/internal/utils"
	"foodgram/internal/views"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipes  *services.RecipeService
	members  *services.MembershipService
	follows  *services.FollowService
	shopping *services.ShoppingListService
	imageURL views.ImageURL
	pageSize int
}

func NewRecipeHandler(recipes *services.RecipeService, members *services.MembershipService, follows *services.FollowService,
	shopping *services.ShoppingListService, imageURL views.ImageURL, pageSize int) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		members:  members,
		follows:  follows,
		shopping: shopping,
		imageURL: imageURL,
		pageSize: pageSize,
	}
}

// project 批量查询收藏、购物车与关注状态后生成完整视图
func (h *RecipeHandler) project(ctx context.Context, viewer *models.User, recipes []models.Recipe) ([]views.Recipe, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := h.members.Members(ctx, services.Favorites, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := h.members.Members(ctx, services.ShoppingCart, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	following, err := h.follows.Following(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]views.Recipe, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		flags := views.RecipeFlags{Favorited: favorited[r.ID], InCart: inCart[r.ID]}
		out[i] = views.NewRecipe(r, h.imageURL, flags, following[r.AuthorID])
	}
	return out, nil
}

func (h *RecipeHandler) renderOne(c *gin.Context, code int, recipe *models.Recipe) {
	out, err := h.project(c.Request.Context(), middleware.CurrentUser(c), []models.Recipe{*recipe})
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(code, out[0])
}

// List GET /api/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	viewer := middleware.CurrentUser(c)
	filter := services.RecipeFilter{
		TagSlugs:       c.QueryArray("tags"),
		IsFavorited:    utils.IsTruthy(c.Query("is_favorited")),
		InShoppingCart: utils.IsTruthy(c.Query("is_in_shopping_cart")),
	}
	if author, ok := utils.StringToUint(c.Query("author")); ok {
		filter.AuthorID = author
	}
	page := pageFromQuery(c, h.pageSize)

	recipes, total, err := h.recipes.List(c.Request.Context(), viewer, filter, page)
	if err != nil {
		RenderError(c, err)
		return
	}
	results, err := h.project(c.Request.Context(), viewer, recipes)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, results))
}

// Detail GET /api/recipes/:id
func (h *RecipeHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.renderOne(c, http.StatusOK, recipe)
}

// Create POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var in services.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RenderBindError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), mustUser(c), in)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.renderOne(c, http.StatusCreated, recipe)
}

// Update PATCH /api/recipes/:id，仅作者可修改
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RenderBindError(c, err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), mustUser(c), id, in)
	if err != nil {
		RenderError(c, err)
		return
	}
	h.renderOne(c, http.StatusOK, recipe)
}

// Delete DELETE /api/recipes/:id，仅作者可删除
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), mustUser(c), id); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
