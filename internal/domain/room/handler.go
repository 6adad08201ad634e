package room

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meetingrooms/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

// List handles GET /api/v1/rooms
func (h *Handler) List(c *gin.Context) {
	rooms, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list rooms")
		return
	}
	response.Success(c, http.StatusOK, rooms)
}

// Agenda handles GET /api/v1/rooms/agenda?date=YYYY-MM-DD
func (h *Handler) Agenda(c *gin.Context) {
	rooms, err := h.service.DayAgenda(c.Request.Context(), c.Query("date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load agenda")
		return
	}
	response.Success(c, http.StatusOK, rooms)
}

// Create handles POST /api/v1/admin/rooms
func (h *Handler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrInvalidRoom.Error())
		return
	}

	room, err := h.service.Add(c.Request.Context(), Room{Name: req.Name, Capacity: req.Capacity})
	if err != nil {
		if errors.Is(err, ErrInvalidRoom) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrInvalidRoom.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create room")
		return
	}
	response.Success(c, http.StatusCreated, room)
}

// Delete handles DELETE /api/v1/admin/rooms/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to delete room")
		return
	}
	if !removed {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "room not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
