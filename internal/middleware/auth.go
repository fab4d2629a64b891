package middleware

import (
	"achievements_tracker_backend/internal/util"
	"achievements_tracker_backend/pkg/logger"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier is the identity provider contract: a bearer token in, a verified user out.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*util.Claims, error)
}

const bearerPrefix = "Bearer "

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil || claims == nil || claims.UID() == "" {
			// 只记录原因，不返回给客户端
			logger.Log.Debug("token verification failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// RequireUser returns the verified user id or writes 401 and returns false.
func RequireUser(c *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(c)
	if claims == nil || claims.UID() == "" {
		util.Unauthorized(c)
		c.Abort()
		return "", false
	}
	return claims.UID(), true
}
