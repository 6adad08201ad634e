// Package report aggregates the last month of reservations for the admin
// usage dashboard. It only reads.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"meetingrooms/internal/clock"
	"meetingrooms/internal/domain/reservation"
	"meetingrooms/internal/domain/room"
)

const (
	window       = 30 * 24 * time.Hour
	topRoomLimit = 5
	otherLabel   = "Outro / Personalizado"
	unknownRoom  = "Sem Sala"
)

// colorLabels names the palette offered by the booking form.
var colorLabels = map[string]string{
	"#007ACC": "Alinhamento",
	"#C62828": "Urgente",
	"#2E7D32": "Cliente",
	"#F57C00": "Planejamento",
	"#7B1FA2": "Treinamento",
}

type Report struct {
	From           time.Time            `json:"from"`
	To             time.Time            `json:"to"`
	TotalMeetings  int                  `json:"total_meetings"`
	AverageMinutes int                  `json:"average_minutes"`
	TopRooms       []RoomUsage          `json:"top_rooms"`
	ColorByPerson  []ResponsibleProfile `json:"color_by_person"`
}

type RoomUsage struct {
	Name     string `json:"name"`
	Meetings int    `json:"meetings"`
}

type ResponsibleProfile struct {
	Responsible   string `json:"responsible"`
	FavoriteColor string `json:"favorite_color"`
	ColorLabel    string `json:"color_label"`
	Meetings      int    `json:"meetings"`
}

type ReservationSource interface {
	ListSince(ctx context.Context, since time.Time) ([]reservation.Reservation, error)
}

type RoomSource interface {
	List(ctx context.Context) ([]room.Room, error)
}

type Service struct {
	reservations ReservationSource
	rooms        RoomSource
	clock        clock.Clock
}

func NewService(reservations ReservationSource, rooms RoomSource, clk clock.Clock) *Service {
	return &Service{reservations: reservations, rooms: rooms, clock: clk}
}

// Generate summarises reservations starting in the last 30 days.
func (s *Service) Generate(ctx context.Context) (*Report, error) {
	now := s.clock.NowUTC()
	rep := &Report{
		From:          now.Add(-window),
		To:            now,
		TopRooms:      []RoomUsage{},
		ColorByPerson: []ResponsibleProfile{},
	}

	items, err := s.reservations.ListSince(ctx, rep.From)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return rep, nil
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}

	var total time.Duration
	perRoom := map[string]int{}
	perPerson := map[string]map[string]int{}
	for _, it := range items {
		total += it.Duration()

		name, ok := names[it.RoomID]
		if !ok {
			name = unknownRoom
		}
		perRoom[name]++

		if perPerson[it.Responsible] == nil {
			perPerson[it.Responsible] = map[string]int{}
		}
		perPerson[it.Responsible][it.Color]++
	}

	rep.TotalMeetings = len(items)
	rep.AverageMinutes = int(total.Minutes() / float64(len(items)))
	rep.TopRooms = topRooms(perRoom, topRoomLimit)
	rep.ColorByPerson = colorProfiles(perPerson)
	return rep, nil
}

func topRooms(counts map[string]int, limit int) []RoomUsage {
	out := make([]RoomUsage, 0, len(counts))
	for name, n := range counts {
		out = append(out, RoomUsage{Name: name, Meetings: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meetings != out[j].Meetings {
			return out[i].Meetings > out[j].Meetings
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func colorProfiles(perPerson map[string]map[string]int) []ResponsibleProfile {
	out := make([]ResponsibleProfile, 0, len(perPerson))
	for person, colors := range perPerson {
		var (
			favorite string
			best     int
			meetings int
		)
		for color, n := range colors {
			meetings += n
			if n > best || (n == best && color < favorite) {
				favorite, best = color, n
			}
		}
		out = append(out, ResponsibleProfile{
			Responsible:   person,
			FavoriteColor: favorite,
			ColorLabel:    ColorLabel(favorite),
			Meetings:      meetings,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Meetings != out[j].Meetings {
			return out[i].Meetings > out[j].Meetings
		}
		return out[i].Responsible < out[j].Responsible
	})
	return out
}

// ColorLabel translates a palette color into its meeting category.
func ColorLabel(hex string) string {
	if label, ok := colorLabels[hex]; ok {
		return label
	}
	return otherLabel
}
