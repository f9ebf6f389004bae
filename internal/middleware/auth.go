package middleware

import (
	"strings"

	"brolearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware requires a bearer access token and stores its claims under
// util.ContextUserKey.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || tokenString == authHeader {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret, util.TokenAccess)
		if err != nil {
			util.RequestLogger(c).Debug("Rejected token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		if l, ok := c.Get(util.ContextLoggerKey); ok {
			if reqLogger, ok := l.(*zap.Logger); ok {
				c.Set(util.ContextLoggerKey, reqLogger.With(zap.Uint("user_id", claims.UserID)))
			}
		}
		c.Next()
	}
}
