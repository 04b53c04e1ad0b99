package domain

import "time"

// Interval полуоткрытый интервал времени [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps returns true if the intervals intersect
// Интервалы, которые только касаются границами, не пересекаются
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration длительность интервала
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsValid конец строго после начала
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// AvailableSlot свободный слот для записи
type AvailableSlot struct {
	StartAt         time.Time
	EndAt           time.Time
	DurationMinutes int
}
