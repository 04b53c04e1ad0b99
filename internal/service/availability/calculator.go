package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// Input параметры расчёта свободных слотов мастера на день
type Input struct {
	Zone            slottime.Zone
	Hours           domain.WeeklyHours
	Day             time.Time // любой момент внутри нужного дня зоны
	DurationMinutes int       // суммарная длительность выбранных услуг
	StepMinutes     int       // шаг сетки, 0 = domain.DefaultSlotStepMinutes
	Buffer          time.Duration
	Now             time.Time
	Busy            []domain.Interval // неотменённые бронирования мастера
}

// ComputeAvailableSlots возвращает упорядоченные начала слотов, в которые можно записаться
//
// Шаг 1: строим сетку от открытия с шагом StepMinutes, слот целиком внутри часов работы
// Шаг 2: отбрасываем слоты, начинающиеся раньше Now+Buffer
// Шаг 3: отбрасываем слоты, пересекающиеся с любым бронированием (пересечение интервалов)
func ComputeAvailableSlots(in Input) ([]time.Time, error) {
	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, in.DurationMinutes)
	}

	step := in.StepMinutes
	if step == 0 {
		step = domain.DefaultSlotStepMinutes
	}
	if step < 0 {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidStep, step)
	}

	hours := in.Hours.For(in.Zone.Weekday(in.Day))
	if !hours.IsOpen() {
		return []time.Time{}, nil
	}

	if hours.CloseMinute-hours.OpenMinute < in.DurationMinutes {
		return []time.Time{}, nil
	}

	dayStart, _ := in.Zone.DayBounds(in.Day)
	earliest := in.Now.Add(in.Buffer)
	duration := time.Duration(in.DurationMinutes) * time.Minute

	seen := make(map[int64]struct{})
	slots := make([]time.Time, 0)

	for minute := hours.OpenMinute; minute+in.DurationMinutes <= hours.CloseMinute; minute += step {
		start := in.Zone.AtMinute(dayStart, minute)
		candidate := domain.Interval{Start: start, End: start.Add(duration)}

		if start.Before(earliest) {
			continue
		}
		if overlapsAny(candidate, in.Busy) {
			continue
		}

		// На переходе смещения две минуты сетки могут дать один момент
		key := start.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		slots = append(slots, start)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots, nil
}

// IsSlotAvailable проверяет конкретное начало по тем же правилам, что и ComputeAvailableSlots
func IsSlotAvailable(in Input, start time.Time) (bool, error) {
	slots, err := ComputeAvailableSlots(in)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func overlapsAny(candidate domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// FitsAnyStart помещается ли длительность в рабочие часы дня без учёта бронирований
// true при пустом ComputeAvailableSlots значит, что день занят, а не закрыт
func FitsAnyStart(in Input) (bool, error) {
	in.Busy = nil
	slots, err := ComputeAvailableSlots(in)
	if err != nil {
		return false, err
	}
	return len(slots) > 0, nil
}
