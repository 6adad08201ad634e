package settings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// singletonKey is the only value the singleton column ever holds; the unique
// index on it keeps the table at one row.
const singletonKey = 1

// BusinessHours is the daily window, in venue-local whole hours, during which
// rooms can be booked. A reservation may end exactly at ClosingHour:00.
type BusinessHours struct {
	ID          uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	Singleton   int       `json:"-" gorm:"not null;default:1;uniqueIndex"`
	OpeningHour int       `json:"opening_hour" gorm:"not null"`
	ClosingHour int       `json:"closing_hour" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (BusinessHours) TableName() string {
	return "business_hours"
}

func (b *BusinessHours) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.Singleton = singletonKey
	return nil
}

// DefaultHours applies until an admin stores a window.
var DefaultHours = BusinessHours{OpeningHour: 8, ClosingHour: 18}

func (b BusinessHours) Validate() error {
	if b.OpeningHour < 0 || b.OpeningHour > 23 || b.ClosingHour < 0 || b.ClosingHour > 23 {
		return ErrHourOutOfRange
	}
	if b.OpeningHour >= b.ClosingHour {
		return ErrOpeningNotBeforeClosing
	}
	return nil
}
