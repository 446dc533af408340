package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/handlers"
)

func registerAdminNotificationRoutes(admin *gin.RouterGroup, handler *handlers.AdminNotificationHandler, dispatchLimit gin.HandlerFunc) {
	group := admin.Group("/notifications")
	{
		group.POST("/send", limited(dispatchLimit, handler.Send)...)
		group.POST("/broadcast", limited(dispatchLimit, handler.Broadcast)...)

		group.GET("", handler.List)
		group.GET("/stats", handler.Stats)
		group.GET("/:id", handler.Get)
		group.GET("/:id/logs", handler.Logs)
	}
}

func registerStudentRoutes(admin *gin.RouterGroup, handler *handlers.StudentHandler) {
	group := admin.Group("/students")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id/active", handler.SetActive)
	}
}

func registerInboxRoutes(me *gin.RouterGroup, handler *handlers.InboxHandler) {
	group := me.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.GET("/stream", handler.Stream)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
	}
}

func limited(limit, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limit, handler}
}
