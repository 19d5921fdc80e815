package middleware

import (
	"net/http"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const invalidSessionMessage = "invalid or expired session"

// tokenFromRequest 优先读取 HTTP-only Cookie，其次读取 Bearer 头
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(util.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func AuthMiddleware(secret string, sessions repository.SessionBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Error(c, http.StatusUnauthorized, invalidSessionMessage)
			c.Abort()
			return
		}

		if claims.ID != "" {
			revoked, err := sessions.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
			if revoked {
				util.Error(c, http.StatusUnauthorized, invalidSessionMessage)
				c.Abort()
				return
			}
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}
