package offers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts offer endpoints. Offers hang off listings for
// creation and listing, and off their own group for resolution.
func RegisterRoutes(listingsGroup, offersGroup *gin.RouterGroup, h *Handler, requireAuth gin.HandlerFunc) {
	listingsGroup.POST("/:id/offers", requireAuth, h.Submit)
	listingsGroup.GET("/:id/offers", requireAuth, h.ListForListing)

	offersGroup.POST("/:id/accept", requireAuth, h.Accept)
	offersGroup.POST("/:id/reject", requireAuth, h.Reject)
}
