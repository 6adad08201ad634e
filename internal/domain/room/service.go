package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/notify"
	"meetingrooms/internal/pkg/validator"
)

type Service struct {
	repo      *Repository
	clock     clock.Clock
	broadcast notify.Broadcaster
}

func NewService(repo *Repository, clk clock.Clock, b notify.Broadcaster) *Service {
	if b == nil {
		b = notify.Nop{}
	}
	return &Service{repo: repo, clock: clk, broadcast: b}
}

func (s *Service) Add(ctx context.Context, room Room) (*Room, error) {
	room.Reservations = nil
	if errs := validator.Validate(&room); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoom, errs)
	}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, err
	}
	s.broadcast.Broadcast(notify.EventUpdated)
	return &room, nil
}

// Remove deletes the room with all its reservations and reports whether it
// existed.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.broadcast.Broadcast(notify.EventUpdated)
	}
	return removed, nil
}

func (s *Service) ListWithUpcoming(ctx context.Context, asOf time.Time) ([]Room, error) {
	return s.repo.ListWithUpcoming(ctx, asOf)
}

// Dashboard lists rooms with everything booked from the start of the
// current venue day on.
func (s *Service) Dashboard(ctx context.Context) ([]Room, error) {
	return s.repo.ListWithUpcoming(ctx, clock.StartOfDay(s.clock, s.clock.NowUTC()))
}

// DayAgenda lists rooms with the reservations starting on the venue-local
// date (YYYY-MM-DD). An empty date means today.
func (s *Service) DayAgenda(ctx context.Context, date string) ([]Room, error) {
	if date == "" {
		date = s.clock.ToLocal(s.clock.NowUTC()).Date
	}
	from, to, err := clock.ParseDay(s.clock, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return s.repo.ListWithReservationsStarting(ctx, from, to)
}
