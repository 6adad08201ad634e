package reservation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"meetingrooms/internal/clock"
)

// Availability lists the free slots of the room on the venue-local date
// (YYYY-MM-DD), bounded by the current business hours.
func (e *Engine) Availability(ctx context.Context, roomID uuid.UUID, date string) ([]Slot, error) {
	dayStart, _, err := clock.ParseDay(e.clock, date)
	if err != nil {
		return nil, invalid("date must be formatted as YYYY-MM-DD")
	}

	hours, err := e.hours.Get(ctx)
	if err != nil {
		return nil, technical(err)
	}

	exists, err := e.rooms(e.db).Exists(ctx, roomID)
	if err != nil {
		return nil, technical(err)
	}
	if !exists {
		return nil, notFound("room not found")
	}

	local := dayStart.In(e.clock.Location())
	open := e.clock.ToUTC(local.Year(), local.Month(), local.Day(), hours.OpeningHour, 0)
	close := e.clock.ToUTC(local.Year(), local.Month(), local.Day(), hours.ClosingHour, 0)

	busy, err := e.store.FindOverlapping(ctx, roomID, open, close, nil)
	if err != nil {
		return nil, technical(err)
	}
	slots := make([]Slot, 0, len(busy))
	for _, b := range busy {
		slots = append(slots, Slot{Start: b.Start, End: b.End})
	}
	return subtractBusy(open, close, slots), nil
}

// subtractBusy returns the gaps of [open, close) not covered by busy.
func subtractBusy(open, close time.Time, busy []Slot) []Slot {
	if len(busy) == 0 {
		return []Slot{{Start: open, End: close}}
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := make([]Slot, 0, len(busy))
	for _, s := range busy {
		if !s.End.After(open) || !s.Start.Before(close) {
			continue
		}
		if s.Start.Before(open) {
			s.Start = open
		}
		if s.End.After(close) {
			s.End = close
		}

		if len(merged) == 0 {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}

	cur := open
	out := make([]Slot, 0, len(merged)+1)
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, Slot{Start: cur, End: b.Start})
		}
		if b.End.After(cur) {
			cur = b.End
		}
	}
	if cur.Before(close) {
		out = append(out, Slot{Start: cur, End: close})
	}
	return out
}
