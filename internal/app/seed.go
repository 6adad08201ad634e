package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetingrooms/internal/domain/room"
)

// SeedRooms are the venue's six rooms with stable ids.
func SeedRooms() []room.Room {
	rooms := make([]room.Room, 0, 6)
	for i := 1; i <= 6; i++ {
		capacity := 12
		if i > 3 {
			capacity = 8
		}
		rooms = append(rooms, room.Room{
			ID:       uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", i)),
			Name:     fmt.Sprintf("Sala %d", i),
			Capacity: capacity,
		})
	}
	return rooms
}

// Seed inserts the seed rooms into an empty rooms table. Once any room exists
// it does nothing, so rooms removed by an admin stay removed. It returns how
// many rows were inserted.
func Seed(ctx context.Context, db *gorm.DB) (int64, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&room.Room{}).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	rooms := SeedRooms()
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rooms)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
