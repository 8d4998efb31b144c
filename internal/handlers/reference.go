package handlers

import (
	"net/http"

	"foodgram/internal/services"
	"foodgram/internal/views"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler 标签与食材，只读且不分页
type ReferenceHandler struct {
	refs *services.ReferenceService
}

func NewReferenceHandler(refs *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

func (h *ReferenceHandler) ListTags(c *gin.Context) {
	tags, err := h.refs.Tags(c.Request.Context())
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewTags(tags))
}

func (h *ReferenceHandler) Tag(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	tag, err := h.refs.Tag(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewTag(tag))
}

// ListIngredients GET /api/ingredients?name=
func (h *ReferenceHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.refs.Ingredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewIngredients(ingredients))
}

func (h *ReferenceHandler) Ingredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.refs.Ingredient(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewIngredient(ingredient))
}
