package reservation

import (
	"time"

	"github.com/google/uuid"
)

type ReserveRequestBody struct {
	RoomID      string    `json:"room_id" binding:"required,uuid"`
	Title       string    `json:"title" binding:"required"`
	Responsible string    `json:"responsible" binding:"required"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
	Color       string    `json:"color"`
}

func (b ReserveRequestBody) toRequest(id *uuid.UUID) ReserveRequest {
	return ReserveRequest{
		ID:          id,
		RoomID:      uuid.MustParse(b.RoomID),
		Title:       b.Title,
		Responsible: b.Responsible,
		Start:       b.Start,
		End:         b.End,
		Color:       b.Color,
	}
}

type ReserveResponse struct {
	ID uuid.UUID `json:"id"`
}

type CancelResponse struct {
	Removed bool `json:"removed"`
}

type AvailabilityResponse struct {
	RoomID uuid.UUID `json:"room_id"`
	Date   string    `json:"date"`
	Free   []Slot    `json:"free"`
}
