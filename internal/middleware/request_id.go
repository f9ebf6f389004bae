package middleware

import (
	"brolearn_backend/internal/util"
	"brolearn_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID propagates or assigns X-Request-ID and attaches a logger
// carrying it to the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(util.HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(util.HeaderRequestID, id)
		c.Set(util.ContextLoggerKey, logger.Log.With(zap.String("request_id", id)))
		c.Next()
	}
}
