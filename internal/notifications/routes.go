package notifications

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the notification endpoints. All of them require an
// authenticated caller.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth gin.HandlerFunc) {
	rg.Use(requireAuth)
	rg.GET("", h.List)
	rg.GET("/unread-count", h.UnreadCount)
	rg.POST("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
}
