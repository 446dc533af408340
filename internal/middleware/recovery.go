package middleware

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/response"
)

// Recovery turns a handler panic into the standard 500 envelope. The panic value and
// stack go to the log only.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.WithModule("http").Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(CtxRequestIDKey)),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		response.Error(c, errors.ErrInternalServer)
		c.Abort()
	})
}

// NotFoundHandler answers unknown routes with the JSON 404 envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.ErrNotFound)
}
