package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const SessionName = "foodgram_session"

// Sessions cookie 存储的 session。Lax 阻止跨站 POST 携带 cookie，
// secure 为 true 时 cookie 只在 HTTPS 下发送。
func Sessions(secret string, secure bool, maxAge time.Duration) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store)
}
