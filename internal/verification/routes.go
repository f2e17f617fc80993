package verification

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts verification endpoints. The confirm route is public
// because it is opened from a mailed link.
func RegisterRoutes(listingsGroup, verificationsGroup *gin.RouterGroup, h *Handler, requireAuth, requireAdmin gin.HandlerFunc) {
	listingsGroup.POST("/:id/verifications", requireAuth, h.Start)

	verificationsGroup.GET("/confirm/:token", h.ConfirmEmail)
	verificationsGroup.GET("/:id", requireAuth, h.Get)
	verificationsGroup.POST("/:id/check", requireAuth, h.Check)
	verificationsGroup.POST("/:id/approve", requireAuth, requireAdmin, h.Approve)
	verificationsGroup.POST("/:id/reject", requireAuth, requireAdmin, h.Reject)
}
