package slottime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZone_Unknown(t *testing.T) {
	_, err := NewZone("Mars/Olympus_Mons")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownZone))
}

func TestNewZone_Cached(t *testing.T) {
	z1 := MustZone("America/Sao_Paulo")
	z2 := MustZone("America/Sao_Paulo")
	assert.Same(t, z1.Location(), z2.Location())
	assert.Equal(t, "America/Sao_Paulo", z1.Name())
}

func TestWallClockToInstant(t *testing.T) {
	z := MustZone("America/Sao_Paulo")

	got := z.WallClockToInstant(2025, time.June, 10, 10, 30)
	assert.Equal(t, time.Date(2025, time.June, 10, 13, 30, 0, 0, time.UTC), got)
}

func TestWallClockToInstant_AroundOffsetChange(t *testing.T) {
	z := MustZone("Europe/Berlin")

	// 31 марта 2024 03:30 по Берлину уже летнее время (+02:00)
	got := z.WallClockToInstant(2024, time.March, 31, 3, 30)
	assert.Equal(t, time.Date(2024, time.March, 31, 1, 30, 0, 0, time.UTC), got)

	// 00:30 того же дня ещё зимнее (+01:00)
	got = z.WallClockToInstant(2024, time.March, 31, 0, 30)
	assert.Equal(t, time.Date(2024, time.March, 30, 23, 30, 0, 0, time.UTC), got)
}

func TestParseDate(t *testing.T) {
	z := MustZone("America/Sao_Paulo")

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "2025-06-10", want: time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC)},
		{name: "single digit month", input: "2025-6-10", wantErr: true},
		{name: "impossible day", input: "2025-02-30", wantErr: true},
		{name: "trailing garbage", input: "2025-06-10x", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := z.ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, z.FormatDate(got))
		})
	}
}

func TestParseLocalDateTime_RoundTrip(t *testing.T) {
	z := MustZone("America/Sao_Paulo")

	for _, s := range []string{"2025-06-10T09:00", "2025-12-31T23:30", "2026-01-01T00:00"} {
		instant, err := z.ParseLocalDateTime(s)
		require.NoError(t, err)
		assert.Equal(t, s, z.FormatLocalDateTime(instant))
	}

	_, err := z.ParseLocalDateTime("2025-06-10 09:00")
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	_, err = z.ParseLocalDateTime("2025-06-10T25:00")
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}

func TestFormatParse_InstantRoundTrip(t *testing.T) {
	z := MustZone("America/Sao_Paulo")

	instant := time.Date(2025, time.August, 5, 17, 45, 0, 0, time.UTC)
	parsed, err := z.ParseLocalDateTime(z.FormatLocalDateTime(instant))
	require.NoError(t, err)
	assert.True(t, instant.Equal(parsed))
}

func TestDayBounds(t *testing.T) {
	z := MustZone("America/Sao_Paulo")

	// 01:00 UTC 11 июня = 22:00 10 июня по Сан-Паулу
	start, end := z.DayBounds(time.Date(2025, time.June, 11, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.June, 10, 3, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.June, 11, 3, 0, 0, 0, time.UTC), end)

	start, end, err := z.DayBoundsForDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, "2026-01-01", z.FormatDate(end))
}

func TestDayBounds_ShortDay(t *testing.T) {
	z := MustZone("Europe/Berlin")

	start, end := z.DayBounds(time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestMinuteOfDayWeekdayDayKey(t *testing.T) {
	z := MustZone("America/Sao_Paulo")
	instant := time.Date(2025, time.June, 11, 1, 15, 0, 0, time.UTC)

	assert.Equal(t, 22*60+15, z.MinuteOfDay(instant))
	assert.Equal(t, time.Tuesday, z.Weekday(instant))
	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), z.DayKey(instant))
	assert.Equal(t, "22:15", z.FormatTime(instant))
}

func TestAtMinute(t *testing.T) {
	z := MustZone("America/Sao_Paulo")
	dayStart, err := z.ParseDate("2025-06-10")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 10, 12, 30, 0, 0, time.UTC), z.AtMinute(dayStart, 9*60+30))
}
