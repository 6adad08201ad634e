// Package notify fans "something changed" signals out to connected viewers.
// Delivery is best-effort: a Broadcast never blocks the caller on a slow or
// absent consumer and never reports failure.
package notify

import "sync"

// EventUpdated tells viewers to refresh reservations, rooms or settings.
const EventUpdated = "reservations.updated"

type Broadcaster interface {
	Broadcast(event string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Broadcast(string) {}

// Multi forwards each event to every non-nil broadcaster.
type Multi []Broadcaster

func (m Multi) Broadcast(event string) {
	for _, b := range m {
		if b != nil {
			b.Broadcast(event)
		}
	}
}

// Recorder keeps every event it receives. Tests use it to count signals.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Broadcast(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
