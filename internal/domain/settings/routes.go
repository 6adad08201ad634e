package settings

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/business-hours", h.GetBusinessHours)
}

// RegisterAdminRoutes expects rg to be guarded by the admin middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/settings/business-hours", h.UpdateBusinessHours)
}
