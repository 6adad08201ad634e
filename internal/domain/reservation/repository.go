package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the reservation table. WithTx rebinds it so every call runs
// inside the caller's transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

func (r *Repository) Insert(ctx context.Context, res *Reservation) error {
	normalize(res)
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *Repository) Update(ctx context.Context, res *Reservation) error {
	normalize(res)
	return r.db.WithContext(ctx).Model(&Reservation{}).Where("id = ?", res.ID).Updates(map[string]any{
		"room_id":     res.RoomID,
		"title":       res.Title,
		"responsible": res.Responsible,
		"start_time":  res.Start,
		"end_time":    res.End,
		"color":       res.Color,
	}).Error
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Reservation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID returns nil when the reservation does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var res Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindOverlapping returns the room's reservations intersecting [start, end),
// ordered by start. excludeID, when set, is left out.
func (r *Repository) FindOverlapping(ctx context.Context, roomID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]Reservation, error) {
	q := r.db.WithContext(ctx).
		Where("room_id = ? AND start_time < ? AND end_time > ?", roomID, utc(end), utc(start))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var out []Reservation
	if err := q.Order("start_time asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListCalendar returns every reservation with its room name, ordered by
// start.
func (r *Repository) ListCalendar(ctx context.Context) ([]CalendarEntry, error) {
	var out []CalendarEntry
	err := r.db.WithContext(ctx).
		Table("reservations AS r").
		Select(`r.id, r.room_id, rm.name AS room_name, r.title, r.responsible,
			r.start_time AS start, r.end_time AS "end", r.color`).
		Joins("JOIN rooms rm ON rm.id = r.room_id").
		Order("r.start_time asc").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByPeriod returns reservations starting within [from, to], ordered by
// start.
func (r *Repository) ListByPeriod(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	var out []Reservation
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", utc(from), utc(to)).
		Order("start_time asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every reservation, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := r.db.WithContext(ctx).Order("start_time desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListSince returns reservations starting at or after since.
func (r *Repository) ListSince(ctx context.Context, since time.Time) ([]Reservation, error) {
	var out []Reservation
	err := r.db.WithContext(ctx).
		Where("start_time >= ?", utc(since)).
		Order("start_time asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// utc keeps stored instants in one zone at a precision every backend keeps,
// so that text-encoded timestamps still compare in time order.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func normalize(res *Reservation) {
	res.Start = utc(res.Start)
	res.End = utc(res.End)
}
