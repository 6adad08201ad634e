package reservation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/database"
	"meetingrooms/internal/domain/settings"
	"meetingrooms/internal/notify"
)

const venueTZ = "America/Sao_Paulo"

// testRoom mirrors the rooms table without importing the room package.
type testRoom struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func (testRoom) TableName() string { return "rooms" }

type sqlRooms struct{ db *gorm.DB }

func (r sqlRooms) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&testRoom{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func roomBinder(tx *gorm.DB) RoomStore { return sqlRooms{db: tx} }

type staticHours settings.BusinessHours

func (h staticHours) Get(context.Context) (settings.BusinessHours, error) {
	return settings.BusinessHours(h), nil
}

type mockHours struct {
	mock.Mock
}

func (m *mockHours) Get(ctx context.Context) (settings.BusinessHours, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.BusinessHours), args.Error(1)
}

type fixture struct {
	engine *Engine
	clock  *clock.Fixed
	rec    *notify.Recorder
	db     *gorm.DB
	roomID uuid.UUID
}

// now is 2026-03-02 09:00 in the venue (UTC-3).
var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:reservation_test_%s?mode=memory&cache=shared", name)
	db, err := database.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testRoom{}, &Reservation{}))
	return db
}

func setupEngine(t *testing.T, hours HoursProvider) *fixture {
	t.Helper()
	db := setupTestDB(t)

	clk, err := clock.NewFixed(venueTZ, testNow)
	require.NoError(t, err)

	room := testRoom{ID: uuid.New(), Name: "Sala 1"}
	require.NoError(t, db.Create(&room).Error)

	if hours == nil {
		hours = staticHours(settings.DefaultHours)
	}
	rec := &notify.Recorder{}
	return &fixture{
		engine: NewEngine(db, roomBinder, hours, clk, rec, DefaultRules),
		clock:  clk,
		rec:    rec,
		db:     db,
		roomID: room.ID,
	}
}

// at returns the UTC instant of hh:mm venue time on 2026-03-03.
func (f *fixture) at(hour, min int) time.Time {
	return f.clock.ToUTC(2026, time.March, 3, hour, min)
}

func (f *fixture) request(start, end time.Time) ReserveRequest {
	return ReserveRequest{
		RoomID:      f.roomID,
		Title:       "Weekly sync",
		Responsible: "Ana",
		Start:       start,
		End:         end,
	}
}

func (f *fixture) addRoom(t *testing.T) uuid.UUID {
	t.Helper()
	room := testRoom{ID: uuid.New(), Name: "Sala extra"}
	require.NoError(t, f.db.Create(&room).Error)
	return room.ID
}

func TestReserve_CreatesAndBroadcasts(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	id, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, []string{notify.EventUpdated}, f.rec.Events())

	stored, err := f.engine.Store().FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, DefaultColor, stored.Color)
	assert.WithinDuration(t, f.at(10, 0), stored.Start, 0)
	assert.WithinDuration(t, f.at(11, 0), stored.End, 0)
}

func TestReserve_AcceptsAnyInputZone(t *testing.T) {
	f := setupEngine(t, nil)

	// 10:00 venue time written as a +02:00 offset.
	start := f.at(10, 0).In(time.FixedZone("UTC+2", 2*60*60))
	id, err := f.engine.Reserve(context.Background(), f.request(start, start.Add(time.Hour)))
	require.NoError(t, err)

	stored, err := f.engine.Store().FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.WithinDuration(t, f.at(10, 0), stored.Start, 0)
}

func TestReserve_NoDoubleBooking(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(20260302))

	for i := 0; i < 60; i++ {
		require.NoError(t, f.db.Where("1 = 1").Delete(&Reservation{}).Error)

		aStart := f.at(8, 0).Add(time.Duration(rng.Intn(24)) * 15 * time.Minute)
		aEnd := aStart.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)
		bStart := f.at(8, 0).Add(time.Duration(rng.Intn(24)) * 15 * time.Minute)
		bEnd := bStart.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)

		_, err := f.engine.Reserve(ctx, f.request(aStart, aEnd))
		require.NoError(t, err, "pair %d first reservation", i)

		_, err = f.engine.Reserve(ctx, f.request(bStart, bEnd))
		overlap := aStart.Before(bEnd) && aEnd.After(bStart)
		if overlap {
			require.Error(t, err, "pair %d: [%s,%s) vs [%s,%s)", i, aStart, aEnd, bStart, bEnd)
			assert.True(t, errors.Is(err, ErrConflict), "pair %d: got %v", i, err)
		} else {
			require.NoError(t, err, "pair %d: [%s,%s) vs [%s,%s)", i, aStart, aEnd, bStart, bEnd)
		}

		all, err := f.engine.FindOverlapping(ctx, f.roomID, f.at(0, 0), f.at(23, 59))
		require.NoError(t, err)
		for x := range all {
			for y := x + 1; y < len(all); y++ {
				assert.False(t, all[x].Overlaps(all[y].Start, all[y].End), "pair %d stored overlapping rows", i)
			}
		}
	}
}

func TestReserve_OtherRoomDoesNotConflict(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)

	req := f.request(f.at(10, 0), f.at(11, 0))
	req.RoomID = f.addRoom(t)
	_, err = f.engine.Reserve(ctx, req)
	assert.NoError(t, err)
}

func TestReserve_BackToBackIsNotOverlap(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)
	_, err = f.engine.Reserve(ctx, f.request(f.at(11, 0), f.at(12, 0)))
	require.NoError(t, err)
	_, err = f.engine.Reserve(ctx, f.request(f.at(9, 0), f.at(10, 0)))
	require.NoError(t, err)
}

func TestCancel_Idempotent(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	id, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)

	removed, err := f.engine.Cancel(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.engine.Cancel(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)

	// One for the create, one for the first cancel.
	assert.Equal(t, 2, f.rec.Count())

	// The slot is free again.
	_, err = f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	assert.NoError(t, err)
}

func TestReserve_BusinessHoursBoundary(t *testing.T) {
	f := setupEngine(t, staticHours{OpeningHour: 8, ClosingHour: 18})
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, f.request(f.at(17, 0), f.at(18, 0)))
	require.NoError(t, err, "17:00-18:00 ends exactly at closing")

	_, err = f.engine.Reserve(ctx, f.request(f.at(17, 0), f.at(18, 30)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, AsRejection(err).Reason, "between 08:00 and 18:00")

	_, err = f.engine.Reserve(ctx, f.request(f.at(18, 0), f.at(18, 0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "start time must be before end time", AsRejection(err).Reason, "structural check runs first")

	_, err = f.engine.Reserve(ctx, f.request(f.at(7, 59), f.at(9, 0)))
	assert.True(t, errors.Is(err, ErrValidation), "start before opening")

	_, err = f.engine.Reserve(ctx, f.request(f.at(8, 0), f.at(9, 0)))
	assert.NoError(t, err, "start exactly at opening")

	// 22:00-00:30 stays under the closing hour only by wrapping to the next day.
	_, err = f.engine.Reserve(ctx, f.request(f.at(22, 0), f.at(22, 0).Add(150*time.Minute)))
	assert.True(t, errors.Is(err, ErrValidation), "end on the following local day")

	assert.Equal(t, 2, f.rec.Count(), "only accepted reservations broadcast")
}

func TestReserve_DurationBoundary(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	_, err := f.engine.Reserve(ctx, f.request(f.at(9, 0), f.at(13, 0)))
	require.NoError(t, err, "exactly 4 hours")

	_, err = f.engine.Reserve(ctx, f.request(f.at(13, 0), f.at(17, 1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "a reservation cannot exceed 4 hours", AsRejection(err).Reason)
}

func TestReserve_PastGraceBoundary(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()
	now := f.clock.NowUTC()

	_, err := f.engine.Reserve(ctx, f.request(now.Add(-DefaultRules.PastGrace-time.Second), now.Add(30*time.Minute)))
	require.Error(t, err, "one second beyond the grace period")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "meetings cannot be booked in the past", AsRejection(err).Reason)

	_, err = f.engine.Reserve(ctx, f.request(now.Add(-DefaultRules.PastGrace), now.Add(30*time.Minute)))
	assert.NoError(t, err, "exactly at the grace boundary")
}

func TestReserve_PastCheckFollowsClock(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	req := f.request(f.at(10, 0), f.at(11, 0))
	f.clock.At = f.at(10, 30)

	_, err := f.engine.Reserve(ctx, req)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestReserve_ConcurrentConflictingRequests(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.request(f.at(10, 0), f.at(11, 0))
			req.Responsible = fmt.Sprintf("worker %d", i)
			<-start

			_, err := f.engine.Reserve(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("worker %d: unexpected error %v", i, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	got, err := f.engine.FindOverlapping(ctx, f.roomID, f.at(10, 0), f.at(11, 0))
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, f.rec.Count())
	assert.Zero(t, f.engine.locks.size())
}

func TestReserve_EditExcludesItself(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	id, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)

	moved := f.request(f.at(10, 15), f.at(11, 15))
	moved.ID = &id
	moved.Title = "Weekly sync (moved)"
	got, err := f.engine.Reserve(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	stored, err := f.engine.Store().FindByID(ctx, id)
	require.NoError(t, err)
	assert.WithinDuration(t, f.at(10, 15), stored.Start, 0)
	assert.Equal(t, "Weekly sync (moved)", stored.Title)

	all, err := f.engine.FindOverlapping(ctx, f.roomID, f.at(0, 0), f.at(23, 0))
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 2, f.rec.Count())
}

func TestReserve_EditStillConflictsWithOthers(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	id, err := f.engine.Reserve(ctx, f.request(f.at(10, 0), f.at(11, 0)))
	require.NoError(t, err)
	_, err = f.engine.Reserve(ctx, f.request(f.at(11, 30), f.at(12, 30)))
	require.NoError(t, err)

	moved := f.request(f.at(11, 0), f.at(12, 0))
	moved.ID = &id
	_, err = f.engine.Reserve(ctx, moved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	stored, err := f.engine.Store().FindByID(ctx, id)
	require.NoError(t, err)
	assert.WithinDuration(t, f.at(10, 0), stored.Start, 0, "rejected edit leaves the row untouched")
}

func TestReserve_NotFound(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	missing := uuid.New()
	edit := f.request(f.at(10, 0), f.at(11, 0))
	edit.ID = &missing
	_, err := f.engine.Reserve(ctx, edit)
	assert.True(t, errors.Is(err, ErrNotFound), "edit of unknown reservation: %v", err)

	unknownRoom := f.request(f.at(10, 0), f.at(11, 0))
	unknownRoom.RoomID = uuid.New()
	_, err = f.engine.Reserve(ctx, unknownRoom)
	assert.True(t, errors.Is(err, ErrNotFound), "unknown room: %v", err)

	assert.Zero(t, f.rec.Count())
}

func TestReserve_FieldValidation(t *testing.T) {
	f := setupEngine(t, nil)

	cases := []struct {
		name   string
		mutate func(*ReserveRequest)
		reason string
	}{
		{"short title", func(r *ReserveRequest) { r.Title = " ab " }, "title must be between 3 and 100 characters"},
		{"long title", func(r *ReserveRequest) { r.Title = strings.Repeat("x", 101) }, "title must be between 3 and 100 characters"},
		{"missing responsible", func(r *ReserveRequest) { r.Responsible = "  " }, "responsible is required"},
		{"long responsible", func(r *ReserveRequest) { r.Responsible = strings.Repeat("y", 51) }, "responsible must be at most 50 characters"},
		{"bad color", func(r *ReserveRequest) { r.Color = "blue" }, "color must be a #RRGGBB value"},
		{"no room", func(r *ReserveRequest) { r.RoomID = uuid.Nil }, "a room must be selected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request(f.at(10, 0), f.at(11, 0))
			tc.mutate(&req)
			_, err := f.engine.Reserve(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, tc.reason, AsRejection(err).Reason)
		})
	}
	assert.Zero(t, f.rec.Count())
}

func TestReserve_CustomColorIsKept(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	req := f.request(f.at(10, 0), f.at(11, 0))
	req.Color = "#c62828"
	id, err := f.engine.Reserve(ctx, req)
	require.NoError(t, err)

	stored, err := f.engine.Store().FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#C62828", stored.Color)
}

func TestReserve_HoursFailureIsTechnical(t *testing.T) {
	hours := &mockHours{}
	hours.On("Get", mock.Anything).Return(settings.BusinessHours{}, errors.New("connection refused"))
	f := setupEngine(t, hours)

	_, err := f.engine.Reserve(context.Background(), f.request(f.at(10, 0), f.at(11, 0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTechnical))

	rej := AsRejection(err)
	assert.True(t, rej.Retryable)
	assert.Equal(t, reasonTechnical, rej.Reason)
	assert.EqualError(t, errors.Unwrap(rej), "connection refused")
	assert.Zero(t, f.rec.Count())
	hours.AssertExpectations(t)
}

func TestReserve_StorageFailureIsTechnical(t *testing.T) {
	f := setupEngine(t, nil)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.engine.Reserve(context.Background(), f.request(f.at(10, 0), f.at(11, 0)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTechnical))
	assert.True(t, AsRejection(err).Retryable)
	assert.Zero(t, f.rec.Count())

	removed, err := f.engine.Cancel(context.Background(), uuid.New())
	assert.False(t, removed)
	assert.True(t, errors.Is(err, ErrTechnical))
}

func TestCancel_FailureLogNamesReservation(t *testing.T) {
	f := setupEngine(t, nil)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	id := uuid.New()
	_, err = f.engine.Cancel(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "op=cancel reservation_id="+id.String())
	assert.NotContains(t, buf.String(), "room_id=")
}

// panickyRooms panics on its first Exists call.
type panickyRooms struct {
	db       *gorm.DB
	panicked *bool
}

func (r panickyRooms) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if !*r.panicked {
		*r.panicked = true
		panic("rooms store exploded")
	}
	return sqlRooms{db: r.db}.Exists(ctx, id)
}

func TestReserve_PanicReleasesRoomLock(t *testing.T) {
	f := setupEngine(t, nil)

	panicked := false
	f.engine.rooms = func(tx *gorm.DB) RoomStore { return panickyRooms{db: tx, panicked: &panicked} }

	assert.Panics(t, func() {
		_, _ = f.engine.Reserve(context.Background(), f.request(f.at(10, 0), f.at(11, 0)))
	})
	assert.Zero(t, f.engine.locks.size())

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.Reserve(context.Background(), f.request(f.at(10, 0), f.at(11, 0)))
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reserve blocked on the room lock after a panic")
	}
	assert.Equal(t, 1, f.rec.Count())
}
