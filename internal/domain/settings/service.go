package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meetingrooms/internal/notify"
)

type Store interface {
	Get(ctx context.Context) (*BusinessHours, error)
	Upsert(ctx context.Context, hours BusinessHours) (*BusinessHours, error)
}

// Service is the process-wide accessor for the business-hours window. Reads
// are served from a cache that expires after ttl; Update refreshes it.
type Service struct {
	store     Store
	defaults  BusinessHours
	ttl       time.Duration
	broadcast notify.Broadcaster
	now       func() time.Time

	mu        sync.RWMutex
	cached    *BusinessHours
	fetchedAt time.Time
}

func NewService(store Store, defaults BusinessHours, ttl time.Duration, b notify.Broadcaster) *Service {
	if b == nil {
		b = notify.Nop{}
	}
	return &Service{
		store:     store,
		defaults:  defaults,
		ttl:       ttl,
		broadcast: b,
		now:       time.Now,
	}
}

// Get returns the stored window or the defaults. It never writes.
func (s *Service) Get(ctx context.Context) (BusinessHours, error) {
	if hours, ok := s.fromCache(); ok {
		return hours, nil
	}

	stored, err := s.store.Get(ctx)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("load business hours: %w", err)
	}
	hours := s.defaults
	if stored != nil {
		hours = *stored
	}
	s.remember(hours)
	return hours, nil
}

func (s *Service) Update(ctx context.Context, hours BusinessHours) (BusinessHours, error) {
	if err := hours.Validate(); err != nil {
		return BusinessHours{}, err
	}

	saved, err := s.store.Upsert(ctx, hours)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("save business hours: %w", err)
	}
	s.remember(*saved)
	s.broadcast.Broadcast(notify.EventUpdated)
	return *saved, nil
}

func (s *Service) fromCache() (BusinessHours, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || s.ttl <= 0 || s.now().Sub(s.fetchedAt) >= s.ttl {
		return BusinessHours{}, false
	}
	return *s.cached, true
}

func (s *Service) remember(hours BusinessHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = &hours
	s.fetchedAt = s.now()
}
