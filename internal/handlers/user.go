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

type UserHandler struct {
	users    *services.UserService
	follows  *services.FollowService
	imageURL views.ImageURL
	pageSize int
}

func NewUserHandler(users *services.UserService, follows *services.FollowService, imageURL views.ImageURL, pageSize int) *UserHandler {
	return &UserHandler{users: users, follows: follows, imageURL: imageURL, pageSize: pageSize}
}

type registerResponse struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RenderBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) projectUsers(ctx context.Context, viewer *models.User, users []models.User) ([]views.User, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	following, err := h.follows.Following(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]views.User, len(users))
	for i := range users {
		out[i] = views.NewUser(&users[i], following[users[i].ID])
	}
	return out, nil
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	users, total, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		RenderError(c, err)
		return
	}
	results, err := h.projectUsers(c.Request.Context(), middleware.CurrentUser(c), users)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, results))
}

// Detail GET /api/users/:id
func (h *UserHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	out, err := h.projectUsers(c.Request.Context(), middleware.CurrentUser(c), []models.User{*user})
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, views.NewUser(mustUser(c), false))
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// SetPassword POST /api/users/set_password
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderBindError(c, err)
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), mustUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// subscription 作者视图附带 recipes_limit 条最新菜谱
func (h *UserHandler) subscription(c *gin.Context, author *models.User) (views.Subscription, error) {
	limit := utils.StringToInt(c.Query("recipes_limit"))
	recipes, count, err := h.follows.AuthorRecipes(c.Request.Context(), author.ID, limit)
	if err != nil {
		return views.Subscription{}, err
	}
	return views.NewSubscription(author, views.NewRecipeSummaries(recipes, h.imageURL), count), nil
}

// Subscribe POST /api/users/:id/subscribe
func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	author, err := h.follows.Subscribe(c.Request.Context(), mustUser(c), id)
	if err != nil {
		RenderError(c, err)
		return
	}
	out, err := h.subscription(c, author)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// Unsubscribe DELETE /api/users/:id/subscribe
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.follows.Unsubscribe(c.Request.Context(), mustUser(c), id); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions GET /api/users/subscriptions
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	authors, total, err := h.follows.List(c.Request.Context(), mustUser(c), page)
	if err != nil {
		RenderError(c, err)
		return
	}

	results := make([]views.Subscription, 0, len(authors))
	for i := range authors {
		sub, err := h.subscription(c, &authors[i])
		if err != nil {
			RenderError(c, err)
			return
		}
		results = append(results, sub)
	}
	c.JSON(http.StatusOK, newPaginated(c, page, total, results))
}
