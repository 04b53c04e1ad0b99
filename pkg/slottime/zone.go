package slottime

import (
	"errors"
	"fmt"
	"sync"
	"time"
	// Бизнес-таймзона должна резолвиться и в минимальных контейнерах без /usr/share/zoneinfo
	_ "time/tzdata"
)

const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04"
	LocalDateTimeLayout = "2006-01-02T15:04"
)

var (
	// ErrInvalidFormat строка не соответствует формату или не проходит обратное преобразование
	ErrInvalidFormat = errors.New("slottime: invalid format")

	// ErrUnknownZone неизвестное имя таймзоны
	ErrUnknownZone = errors.New("slottime: unknown time zone")
)

// locations кэш загруженных таймзон по имени, только чтение после первой загрузки
var locations sync.Map

// Zone бизнес-таймзона, в которой живут слоты, дни и часы работы
type Zone struct {
	name string
	loc  *time.Location
}

// NewZone загружает таймзону по IANA имени
func NewZone(name string) (Zone, error) {
	if cached, ok := locations.Load(name); ok {
		return Zone{name: name, loc: cached.(*time.Location)}, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("%w: %s: %v", ErrUnknownZone, name, err)
	}

	actual, _ := locations.LoadOrStore(name, loc)
	return Zone{name: name, loc: actual.(*time.Location)}, nil
}

// MustZone как NewZone, но паникует на ошибке. Для констант и тестов
func MustZone(name string) Zone {
	z, err := NewZone(name)
	if err != nil {
		panic(err)
	}
	return z
}

func (z Zone) Name() string {
	return z.name
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// WallClockToInstant переводит локальное время в зоне в абсолютный момент
//
// Сначала трактуем локальное время как UTC, измеряем смещение зоны в этой точке,
// вычитаем его и перемеряем смещение уже в полученном моменте. Если смещения
// различаются (рядом переход), пересчитываем по второму.
func (z Zone) WallClockToInstant(year int, month time.Month, day, hour, minute int) time.Time {
	guess := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)

	_, offset1 := guess.In(z.Location()).Zone()
	instant := guess.Add(-time.Duration(offset1) * time.Second)

	_, offset2 := instant.In(z.Location()).Zone()
	if offset2 != offset1 {
		instant = guess.Add(-time.Duration(offset2) * time.Second)
	}

	return instant.UTC()
}

// ParseDate разбирает "YYYY-MM-DD" и возвращает начало этого дня в зоне
func (z Zone) ParseDate(s string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrInvalidFormat, s, err)
	}

	instant := z.WallClockToInstant(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0)
	if z.FormatDate(instant) != s {
		return time.Time{}, fmt.Errorf("%w: date %q does not round-trip", ErrInvalidFormat, s)
	}

	return instant, nil
}

// ParseLocalDateTime разбирает "YYYY-MM-DDTHH:MM" как локальное время в зоне
func (z Zone) ParseLocalDateTime(s string) (time.Time, error) {
	parsed, err := time.Parse(LocalDateTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: local date-time %q: %v", ErrInvalidFormat, s, err)
	}

	instant := z.WallClockToInstant(parsed.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute())
	if z.FormatLocalDateTime(instant) != s {
		return time.Time{}, fmt.Errorf("%w: local date-time %q does not round-trip", ErrInvalidFormat, s)
	}

	return instant, nil
}

func (z Zone) FormatDate(t time.Time) string {
	return t.In(z.Location()).Format(DateLayout)
}

func (z Zone) FormatTime(t time.Time) string {
	return t.In(z.Location()).Format(TimeLayout)
}

func (z Zone) FormatLocalDateTime(t time.Time) string {
	return t.In(z.Location()).Format(LocalDateTimeLayout)
}

// DayBounds возвращает [start, endExclusive) календарного дня зоны, в который попадает t
func (z Zone) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(z.Location()).Date()
	start := z.WallClockToInstant(y, m, d, 0, 0)

	next := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	end := z.WallClockToInstant(next.Year(), next.Month(), next.Day(), 0, 0)

	return start, end
}

// DayBoundsForDate то же, что DayBounds, но по строке "YYYY-MM-DD"
func (z Zone) DayBoundsForDate(date string) (time.Time, time.Time, error) {
	start, err := z.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	s, e := z.DayBounds(start)
	return s, e, nil
}

// MinuteOfDay минуты от локальной полуночи
func (z Zone) MinuteOfDay(t time.Time) int {
	local := t.In(z.Location())
	return local.Hour()*60 + local.Minute()
}

func (z Zone) Weekday(t time.Time) time.Weekday {
	return t.In(z.Location()).Weekday()
}

// DayKey календарный день зоны как полночь UTC (для колонок типа DATE)
func (z Zone) DayKey(t time.Time) time.Time {
	y, m, d := t.In(z.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AtMinute момент, соответствующий minute минут от локальной полуночи дня dayStart
func (z Zone) AtMinute(dayStart time.Time, minute int) time.Time {
	y, m, d := dayStart.In(z.Location()).Date()
	return z.WallClockToInstant(y, m, d, minute/60, minute%60)
}
