package reservation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/domain/settings"
)

const (
	minTitleLen       = 3
	maxTitleLen       = 100
	maxResponsibleLen = 50
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Rules are the time limits a candidate must respect.
type Rules struct {
	MaxDuration time.Duration
	PastGrace   time.Duration
}

var DefaultRules = Rules{
	MaxDuration: 4 * time.Hour,
	PastGrace:   2 * time.Minute,
}

// checkFields trims the free-text fields in place and fills the default
// color.
func checkFields(req *ReserveRequest) *Rejection {
	req.Title = strings.TrimSpace(req.Title)
	req.Responsible = strings.TrimSpace(req.Responsible)
	req.Color = strings.TrimSpace(req.Color)

	if req.RoomID == uuid.Nil {
		return invalid("a room must be selected")
	}
	if n := utf8.RuneCountInString(req.Title); n < minTitleLen || n > maxTitleLen {
		return invalid("title must be between %d and %d characters", minTitleLen, maxTitleLen)
	}
	if req.Responsible == "" {
		return invalid("responsible is required")
	}
	if utf8.RuneCountInString(req.Responsible) > maxResponsibleLen {
		return invalid("responsible must be at most %d characters", maxResponsibleLen)
	}
	if req.Color == "" {
		req.Color = DefaultColor
	}
	if !colorPattern.MatchString(req.Color) {
		return invalid("color must be a #RRGGBB value")
	}
	req.Color = strings.ToUpper(req.Color)
	return nil
}

// checkTimes runs the structural, past, and duration checks in that order.
// start and end must already be UTC.
func checkTimes(rules Rules, now, start, end time.Time) *Rejection {
	if !start.Before(end) {
		return invalid("start time must be before end time")
	}
	if start.Before(now.Add(-rules.PastGrace)) {
		return invalid("meetings cannot be booked in the past")
	}
	if end.Sub(start) > rules.MaxDuration {
		return invalid("a reservation cannot exceed %s", formatDuration(rules.MaxDuration))
	}
	return nil
}

// checkBusinessHours verifies the venue-local window. The end may land
// exactly on the closing hour and must stay on the start's local day.
func checkBusinessHours(c clock.Clock, hours settings.BusinessHours, start, end time.Time) *Rejection {
	ls, le := c.ToLocal(start), c.ToLocal(end)

	endAtClosing := le.Hour == hours.ClosingHour && le.Minute == 0 &&
		le.Time.Second() == 0 && le.Time.Nanosecond() == 0
	within := ls.Hour >= hours.OpeningHour &&
		(le.Hour < hours.ClosingHour || endAtClosing) &&
		ls.Date == le.Date
	if !within {
		return invalid("reservations must be between %02d:00 and %02d:00", hours.OpeningHour, hours.ClosingHour)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}
