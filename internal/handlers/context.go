package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/auditctx"
	"github.com/charlesng35/studentms/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// actorContext is requestContext annotated with the authenticated caller for dispatch logging.
func actorContext(c *gin.Context) context.Context {
	ctx := requestContext(c)
	if c == nil {
		return ctx
	}

	actor := auditctx.Actor{
		RequestID: c.GetString(middleware.CtxRequestIDKey),
		IPAddress: c.ClientIP(),
	}
	if claims, ok := middleware.ClaimsFrom(c); ok {
		actor.Subject = claims.Subject
		actor.Role = string(claims.Role)
	}
	return auditctx.WithActor(ctx, actor)
}
