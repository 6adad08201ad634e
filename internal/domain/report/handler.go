package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meetingrooms/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/v1/admin/report
func (h *Handler) Get(c *gin.Context) {
	rep, err := h.service.Generate(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to build report")
		return
	}
	response.Success(c, http.StatusOK, rep)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/report", h.Get)
}
