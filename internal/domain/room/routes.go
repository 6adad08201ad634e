package room

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms", h.List)
	rg.GET("/rooms/agenda", h.Agenda)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/rooms")
	{
		rooms.POST("", h.Create)
		rooms.DELETE("/:id", h.Delete)
	}
}
