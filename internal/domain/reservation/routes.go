package reservation

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the reservation and per-room booking views. mutate
// wraps the endpoints that write.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mutate ...gin.HandlerFunc) {
	chain := func(last gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutate...), last)
	}

	reservations := rg.Group("/reservations")
	{
		reservations.GET("", h.ListByPeriod)
		reservations.GET("/calendar", h.Calendar)
		reservations.POST("", chain(h.Create)...)
		reservations.PUT("/:id", chain(h.Update)...)
		reservations.DELETE("/:id", h.Cancel)
	}

	rooms := rg.Group("/rooms/:id")
	{
		rooms.GET("/reservations", h.RoomReservations)
		rooms.GET("/availability", h.RoomAvailability)
	}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/reservations", h.ListAll)
}
