package reservation

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/database"
	"meetingrooms/internal/domain/settings"
	"meetingrooms/internal/notify"
)

// ReserveRequest is a candidate reservation. A nil ID creates; a non-nil ID
// edits that reservation.
type ReserveRequest struct {
	ID          *uuid.UUID
	RoomID      uuid.UUID
	Title       string
	Responsible string
	Start       time.Time
	End         time.Time
	Color       string
}

// HoursProvider supplies the current business-hours window.
type HoursProvider interface {
	Get(ctx context.Context) (settings.BusinessHours, error)
}

// RoomStore answers whether a room exists.
type RoomStore interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// RoomBinder returns a RoomStore running inside tx.
type RoomBinder func(tx *gorm.DB) RoomStore

// Engine accepts, edits and cancels reservations. For any one room the
// conflict check and the write run under a room lock and inside one
// transaction, so two overlapping requests cannot both commit.
type Engine struct {
	db        *gorm.DB
	store     *Repository
	rooms     RoomBinder
	hours     HoursProvider
	clock     clock.Clock
	broadcast notify.Broadcaster
	rules     Rules

	locks        *roomLocks
	serializable bool
}

func NewEngine(db *gorm.DB, rooms RoomBinder, hours HoursProvider, clk clock.Clock, b notify.Broadcaster, rules Rules) *Engine {
	if b == nil {
		b = notify.Nop{}
	}
	return &Engine{
		db:           db,
		store:        NewRepository(db),
		rooms:        rooms,
		hours:        hours,
		clock:        clk,
		broadcast:    b,
		rules:        rules,
		locks:        newRoomLocks(),
		serializable: database.IsPostgres(db),
	}
}

// Store exposes the read side for views.
func (e *Engine) Store() *Repository {
	return e.store
}

// Reserve validates req and commits it. Every failure is a *Rejection.
func (e *Engine) Reserve(ctx context.Context, req ReserveRequest) (uuid.UUID, error) {
	if rej := checkFields(&req); rej != nil {
		return uuid.Nil, rej
	}

	start, end := utc(req.Start), utc(req.End)
	if rej := checkTimes(e.rules, e.clock.NowUTC(), start, end); rej != nil {
		return uuid.Nil, rej
	}

	hours, err := e.hours.Get(ctx)
	if err != nil {
		e.logFailure("load_hours", "room_id", req.RoomID, err)
		return uuid.Nil, technical(err)
	}
	if rej := checkBusinessHours(e.clock, hours, start, end); rej != nil {
		return uuid.Nil, rej
	}

	res := Reservation{
		RoomID:      req.RoomID,
		Title:       req.Title,
		Responsible: req.Responsible,
		Start:       start,
		End:         end,
		Color:       req.Color,
	}
	if req.ID != nil {
		res.ID = *req.ID
	}

	if err := e.commitLocked(ctx, &res, req.ID != nil); err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			return uuid.Nil, rej
		}
		rej = classifyStoreError(err)
		if rej.Kind == KindTechnical {
			e.logFailure("reserve", "room_id", req.RoomID, err)
		}
		return uuid.Nil, rej
	}

	e.broadcast.Broadcast(notify.EventUpdated)
	return res.ID, nil
}

// commitLocked runs commit in a transaction while holding the room lock. The
// lock is released even when commit panics.
func (e *Engine) commitLocked(ctx context.Context, res *Reservation, isEdit bool) error {
	unlock := e.locks.lock(res.RoomID)
	defer unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return e.commit(ctx, tx, res, isEdit)
	}, e.txOptions())
}

func (e *Engine) commit(ctx context.Context, tx *gorm.DB, res *Reservation, isEdit bool) error {
	exists, err := e.rooms(tx).Exists(ctx, res.RoomID)
	if err != nil {
		return err
	}
	if !exists {
		return notFound("room not found")
	}

	store := e.store.WithTx(tx)
	var exclude *uuid.UUID
	if isEdit {
		current, err := store.FindByID(ctx, res.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound("reservation not found")
		}
		exclude = &res.ID
	}

	clashes, err := store.FindOverlapping(ctx, res.RoomID, res.Start, res.End, exclude)
	if err != nil {
		return err
	}
	if len(clashes) > 0 {
		return conflict()
	}

	if isEdit {
		return store.Update(ctx, res)
	}
	return store.Insert(ctx, res)
}

// Cancel deletes the reservation and reports whether it existed. The error
// is reserved for technical failures.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	removed, err := e.store.Delete(ctx, id)
	if err != nil {
		e.logFailure("cancel", "reservation_id", id, err)
		return false, technical(err)
	}
	if removed {
		e.broadcast.Broadcast(notify.EventUpdated)
	}
	return removed, nil
}

// FindOverlapping returns the room's reservations intersecting
// [windowStart, windowEnd), ordered by start.
func (e *Engine) FindOverlapping(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]Reservation, error) {
	out, err := e.store.FindOverlapping(ctx, roomID, windowStart, windowEnd, nil)
	if err != nil {
		return nil, technical(err)
	}
	return out, nil
}

func (e *Engine) txOptions() *sql.TxOptions {
	if e.serializable {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return nil
}

func (e *Engine) logFailure(op, idField string, id uuid.UUID, err error) {
	sqlState := "-"
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlState = pgErr.Code
	}
	log.Printf("reservation_error op=%s %s=%s sqlstate=%s error=%q", op, idField, id, sqlState, err.Error())
}

// classifyStoreError maps a raw storage error onto the rejection taxonomy.
// Serialization failures (40001) and deadlocks (40P01) stay technical and
// retryable like every other storage error.
func classifyStoreError(err error) *Rejection {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		// The room went away between the existence check and the write.
		return notFound("room not found")
	}
	return technical(err)
}
