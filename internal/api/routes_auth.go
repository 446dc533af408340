package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/handlers"
)

func registerAuthRoutes(engine *gin.Engine, handler *handlers.AuthHandler, enabled bool) {
	if !enabled {
		return
	}
	auth := engine.Group("/api/auth")
	{
		auth.POST("/token", handler.Token)
	}
}
