package settings

import (
	"errors"
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

type updateHoursRequest struct {
	OpeningHour *int `json:"opening_hour" binding:"required,min=0,max=23"`
	ClosingHour *int `json:"closing_hour" binding:"required,min=0,max=23"`
}

// GetBusinessHours handles GET /api/v1/settings/business-hours
func (h *Handler) GetBusinessHours(c *gin.Context) {
	hours, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load business hours")
		return
	}
	response.Success(c, http.StatusOK, hours)
}

// UpdateBusinessHours handles PUT /api/v1/admin/settings/business-hours
func (h *Handler) UpdateBusinessHours(c *gin.Context) {
	var req updateHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "opening_hour and closing_hour must be between 0 and 23")
		return
	}

	hours, err := h.service.Update(c.Request.Context(), BusinessHours{
		OpeningHour: *req.OpeningHour,
		ClosingHour: *req.ClosingHour,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrHourOutOfRange), errors.Is(err, ErrOpeningNotBeforeClosing):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save business hours")
		}
		return
	}
	response.Success(c, http.StatusOK, hours)
}
