package reservation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultColor = "#1976D2"

// Reservation occupies a room over [Start, End). Both instants are stored in
// UTC.
type Reservation struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RoomID      uuid.UUID `json:"room_id" gorm:"type:uuid;not null;index:idx_reservations_room_start,priority:1"`
	Title       string    `json:"title" gorm:"type:varchar(100);not null"`
	Responsible string    `json:"responsible" gorm:"type:varchar(50);not null"`
	Start       time.Time `json:"start" gorm:"column:start_time;not null;index:idx_reservations_room_start,priority:2"`
	End         time.Time `json:"end" gorm:"column:end_time;not null"`
	Color       string    `json:"color" gorm:"type:char(7);not null"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (r *Reservation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Overlaps reports whether r and [start, end) intersect.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.Start.Before(end) && r.End.After(start)
}

func (r Reservation) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// CalendarEntry is a reservation joined with its room name for calendar
// feeds.
type CalendarEntry struct {
	ID          uuid.UUID `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	RoomName    string    `json:"room_name"`
	Title       string    `json:"title"`
	Responsible string    `json:"responsible"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
}

// Slot is a free interval inside a room's bookable window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
