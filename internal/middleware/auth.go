package middleware

import (
	"net/http"
	"strings"

	"foodgram/internal/logging"
	"foodgram/internal/models"
	"foodgram/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey   = "user"
	TokenClaimsKey = "token_claims"
	SessionUserKey = "user_id"
)

// AuthRequired 未登录时返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

// bearerToken 支持 "Token <jwt>" 与 "Bearer <jwt>"
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// LoadUser 从 Authorization 头或 session 中识别当前用户；无效凭证视为匿名
func LoadUser(tokens *services.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint

		if raw := bearerToken(c.GetHeader("Authorization")); raw != "" {
			claims, err := tokens.Parse(c.Request.Context(), raw)
			if err == nil {
				userID = claims.UserID
				c.Set(TokenClaimsKey, claims)
			} else {
				logging.Debug().Err(err).Msg("Rejected auth token")
			}
		} else {
			session := sessions.Default(c)
			switch v := session.Get(SessionUserKey).(type) {
			case uint:
				userID = v
			case int:
				userID = uint(v)
			}
		}

		if userID != 0 {
			if user, err := users.Get(c.Request.Context(), userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，匿名时返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CheckUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
