package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenue_ToLocalAndBack(t *testing.T) {
	v, err := NewVenue("America/Sao_Paulo")
	require.NoError(t, err)

	// 2026-12-01 is outside DST in Brazil: UTC-3.
	utc := time.Date(2026, 12, 1, 20, 30, 0, 0, time.UTC)
	lt := v.ToLocal(utc)

	assert.Equal(t, 17, lt.Hour)
	assert.Equal(t, 30, lt.Minute)
	assert.Equal(t, "2026-12-01", lt.Date)

	back := v.ToUTC(2026, time.December, 1, 17, 30)
	assert.True(t, back.Equal(utc))
	assert.Equal(t, time.UTC, back.Location())
}

func TestVenue_LocalDateCrossesUTCMidnight(t *testing.T) {
	v, err := NewVenue("America/Sao_Paulo")
	require.NoError(t, err)

	lt := v.ToLocal(time.Date(2026, 12, 2, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-12-01", lt.Date)
	assert.Equal(t, 22, lt.Hour)
}

func TestNewVenue_UnknownZone(t *testing.T) {
	_, err := NewVenue("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	v, err := NewVenue("America/Sao_Paulo")
	require.NoError(t, err)

	start, end, err := ParseDay(v, "2026-12-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 1, 3, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 12, 2, 3, 0, 0, 0, time.UTC), end)

	_, _, err = ParseDay(v, "01/12/2026")
	assert.Error(t, err)
}

func TestFixed_NowAndStartOfDay(t *testing.T) {
	at := time.Date(2026, 12, 1, 14, 0, 0, 0, time.UTC)
	f, err := NewFixed("America/Sao_Paulo", at)
	require.NoError(t, err)

	assert.Equal(t, at, f.NowUTC())
	assert.Equal(t, time.Date(2026, 12, 1, 3, 0, 0, 0, time.UTC), StartOfDay(f, f.NowUTC()))

	f.At = at.Add(time.Hour)
	assert.Equal(t, at.Add(time.Hour), f.NowUTC())
}
