// Package clock converts between stored UTC instants and the venue's
// wall-clock time. The venue location is resolved once and never derived
// from the host.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

type Clock interface {
	NowUTC() time.Time
	ToLocal(t time.Time) LocalTime
	ToUTC(year int, month time.Month, day, hour, min int) time.Time
	Location() *time.Location
}

// LocalTime is a venue-local wall-clock reading.
type LocalTime struct {
	Hour   int
	Minute int
	Date   string
	Time   time.Time
}

type Venue struct {
	loc *time.Location
	now func() time.Time
}

func NewVenue(timezone string) (*Venue, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load venue timezone %q: %w", timezone, err)
	}
	return &Venue{loc: loc, now: time.Now}, nil
}

// WithNow returns a copy of the venue clock reading "now" from fn.
func (v *Venue) WithNow(fn func() time.Time) *Venue {
	return &Venue{loc: v.loc, now: fn}
}

func (v *Venue) NowUTC() time.Time {
	return v.now().UTC()
}

func (v *Venue) Location() *time.Location {
	return v.loc
}

func (v *Venue) ToLocal(t time.Time) LocalTime {
	lt := t.In(v.loc)
	return LocalTime{
		Hour:   lt.Hour(),
		Minute: lt.Minute(),
		Date:   lt.Format(DateLayout),
		Time:   lt,
	}
}

func (v *Venue) ToUTC(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, v.loc).UTC()
}

// StartOfDay returns the UTC instant of local midnight for the venue day
// containing t.
func StartOfDay(c Clock, t time.Time) time.Time {
	lt := t.In(c.Location())
	return c.ToUTC(lt.Year(), lt.Month(), lt.Day(), 0, 0)
}

// ParseDay parses a YYYY-MM-DD venue date and returns the UTC bounds
// [start, end) of that local day.
func ParseDay(c Clock, date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := c.ToUTC(d.Year(), d.Month(), d.Day(), 0, 0)
	next := d.AddDate(0, 0, 1)
	end := c.ToUTC(next.Year(), next.Month(), next.Day(), 0, 0)
	return start, end, nil
}

// Fixed is a Clock frozen at a single instant, used by tests and tools.
type Fixed struct {
	*Venue
	At time.Time
}

func NewFixed(timezone string, at time.Time) (*Fixed, error) {
	v, err := NewVenue(timezone)
	if err != nil {
		return nil, err
	}
	f := &Fixed{At: at}
	f.Venue = v.WithNow(func() time.Time { return f.At })
	return f, nil
}
