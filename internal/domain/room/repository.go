package room

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meetingrooms/internal/domain/reservation"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Binder hands the booking engine a view of this repository bound to its
// transaction.
func (r *Repository) Binder() reservation.RoomBinder {
	return func(tx *gorm.DB) reservation.RoomStore {
		return r.WithTx(tx)
	}
}

func (r *Repository) Create(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID returns nil when the room does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the room and its reservations in one transaction and
// reports whether the room existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var existed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&reservation.Reservation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Room{})
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (r *Repository) List(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := r.db.WithContext(ctx).Order("name asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListWithUpcoming returns rooms ordered by name, each carrying its
// reservations that start at or after asOf.
func (r *Repository) ListWithUpcoming(ctx context.Context, asOf time.Time) ([]Room, error) {
	return r.listWithReservations(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("start_time >= ?", asOf.UTC()).Order("start_time asc")
	})
}

// ListWithReservationsStarting returns rooms ordered by name, each carrying
// its reservations that start within [from, to).
func (r *Repository) ListWithReservationsStarting(ctx context.Context, from, to time.Time) ([]Room, error) {
	return r.listWithReservations(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).Order("start_time asc")
	})
}

func (r *Repository) listWithReservations(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).
		Preload("Reservations", scope).
		Order("name asc").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].Reservations == nil {
			rooms[i].Reservations = []reservation.Reservation{}
		}
	}
	return rooms, nil
}
