package listings

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the listing endpoints. requireAuth must populate the
// auth context values.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, requireAuth gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", requireAuth, h.Create)
	rg.DELETE("/:id", requireAuth, h.Delete)
}
