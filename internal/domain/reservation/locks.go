package reservation

import (
	"sync"

	"github.com/google/uuid"
)

// roomLocks hands out one mutex per room. Entries are dropped once nobody
// holds or waits on them.
type roomLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[uuid.UUID]*roomLock)}
}

// lock blocks until the room is free and returns the matching unlock.
func (l *roomLocks) lock(roomID uuid.UUID) func() {
	l.mu.Lock()
	rl, ok := l.locks[roomID]
	if !ok {
		rl = &roomLock{}
		l.locks[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()

		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
