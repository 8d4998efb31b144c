package handlers

import (
	"net/http"

	"foodgram/internal/services"
	"foodgram/internal/views"

	"github.com/gin-gonic/gin"
)

// AddTo 返回 POST /api/recipes/:id/{favorite,shopping_cart} 的处理函数
func (h *RecipeHandler) AddTo(kind services.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		recipe, err := h.members.Add(c.Request.Context(), kind, mustUser(c), id)
		if err != nil {
			RenderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, views.NewRecipeSummary(recipe, h.imageURL))
	}
}

// RemoveFrom 返回 DELETE /api/recipes/:id/{favorite,shopping_cart} 的处理函数
func (h *RecipeHandler) RemoveFrom(kind services.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := h.members.Remove(c.Request.Context(), kind, mustUser(c), id); err != nil {
			RenderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart GET /api/recipes/download_shopping_cart
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shopping.For(c.Request.Context(), mustUser(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.RenderShoppingList(items)))
}
