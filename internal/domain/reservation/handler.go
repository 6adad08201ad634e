package reservation

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/pkg/response"
)

type Handler struct {
	engine *Engine
	clock  clock.Clock
}

func NewHandler(engine *Engine, clk clock.Clock) *Handler {
	return &Handler{engine: engine, clock: clk}
}

// Create handles POST /api/v1/reservations
func (h *Handler) Create(c *gin.Context) {
	var body ReserveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id, title, responsible, start and end are required")
		return
	}

	id, err := h.engine.Reserve(c.Request.Context(), body.toRequest(nil))
	if err != nil {
		writeRejection(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ReserveResponse{ID: id})
}

// Update handles PUT /api/v1/reservations/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var body ReserveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id, title, responsible, start and end are required")
		return
	}

	saved, err := h.engine.Reserve(c.Request.Context(), body.toRequest(&id))
	if err != nil {
		writeRejection(c, err)
		return
	}
	response.Success(c, http.StatusOK, ReserveResponse{ID: saved})
}

// Cancel handles DELETE /api/v1/reservations/:id
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	removed, err := h.engine.Cancel(c.Request.Context(), id)
	if err != nil {
		writeRejection(c, err)
		return
	}
	if !removed {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "reservation not found")
		return
	}
	response.Success(c, http.StatusOK, CancelResponse{Removed: true})
}

// ListByPeriod handles GET /api/v1/reservations?from=&to=
// Without bounds it covers the next seven venue days starting today.
func (h *Handler) ListByPeriod(c *gin.Context) {
	from, to, ok := h.parseWindow(c, 7*24*time.Hour)
	if !ok {
		return
	}

	items, err := h.engine.Store().ListByPeriod(c.Request.Context(), from, to)
	if err != nil {
		writeRejection(c, technical(err))
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Calendar handles GET /api/v1/reservations/calendar
func (h *Handler) Calendar(c *gin.Context) {
	items, err := h.engine.Store().ListCalendar(c.Request.Context())
	if err != nil {
		writeRejection(c, technical(err))
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListAll handles GET /api/v1/admin/reservations
func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.engine.Store().ListAll(c.Request.Context())
	if err != nil {
		writeRejection(c, technical(err))
		return
	}
	response.Success(c, http.StatusOK, items)
}

// RoomReservations handles GET /api/v1/rooms/:id/reservations?from=&to=
// Without bounds it covers the current venue day.
func (h *Handler) RoomReservations(c *gin.Context) {
	roomID, ok := parseIDParam(c)
	if !ok {
		return
	}
	from, to, ok := h.parseWindow(c, 24*time.Hour)
	if !ok {
		return
	}

	items, err := h.engine.FindOverlapping(c.Request.Context(), roomID, from, to)
	if err != nil {
		writeRejection(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// RoomAvailability handles GET /api/v1/rooms/:id/availability?date=YYYY-MM-DD
func (h *Handler) RoomAvailability(c *gin.Context) {
	roomID, ok := parseIDParam(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		date = h.clock.ToLocal(h.clock.NowUTC()).Date
	}

	free, err := h.engine.Availability(c.Request.Context(), roomID, date)
	if err != nil {
		writeRejection(c, err)
		return
	}
	response.Success(c, http.StatusOK, AvailabilityResponse{RoomID: roomID, Date: date, Free: free})
}

// parseWindow reads RFC 3339 from/to query bounds. A missing from defaults
// to the start of the current venue day, a missing to to from+span.
func (h *Handler) parseWindow(c *gin.Context, span time.Duration) (time.Time, time.Time, bool) {
	from := clock.StartOfDay(h.clock, h.clock.NowUTC())
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be an RFC 3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		from = t.UTC()
	}
	to := from.Add(span)
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be an RFC 3339 timestamp")
			return time.Time{}, time.Time{}, false
		}
		to = t.UTC()
	}
	if to.Before(from) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// writeRejection renders err with the status of its kind. Technical details
// stay in the server log.
func writeRejection(c *gin.Context, err error) {
	rej := AsRejection(err)
	switch rej.Kind {
	case KindValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", rej.Reason)
	case KindConflict:
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", rej.Reason)
	case KindNotFound:
		response.Error(c, http.StatusNotFound, "NOT_FOUND", rej.Reason)
	default:
		_ = c.Error(rej)
		response.ErrorWithDetails(c, http.StatusServiceUnavailable, "TECHNICAL_FAILURE", reasonTechnical, gin.H{"retryable": true})
	}
}
