package handlers

import (
	"net/http"

	"foodgram/internal/logging"
	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users  *services.UserService
	tokens *services.TokenService
}

func NewAuthHandler(users *services.UserService, tokens *services.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/token/login：签发 token，同时写入 session
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderBindError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(c, err)
		return
	}
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		RenderError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		logging.Warn().Err(err).Msg("Failed to save session")
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

// Logout POST /api/auth/token/logout：注销当前 token 并清空 session
func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := c.Get(middleware.TokenClaimsKey); ok {
		if claims, ok := v.(*services.TokenClaims); ok {
			if err := h.tokens.Revoke(c.Request.Context(), claims); err != nil {
				RenderError(c, err)
				return
			}
		}
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logging.Warn().Err(err).Msg("Failed to clear session")
	}
	c.Status(http.StatusNoContent)
}
