package room

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"meetingrooms/internal/domain/reservation"
)

type Room struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Capacity int       `json:"capacity" gorm:"not null" validate:"gt=0"`

	Reservations []reservation.Reservation `json:"reservations,omitempty" gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
