package get_available_slots

import "time"

// Settings параметры сетки слотов
type Settings struct {
	StepMinutes    int
	Buffer         time.Duration
	MaxAdvanceDays int // 0 - без ограничения
}

// Request модель запроса на получение доступных слотов
type Request struct {
	BarbershopID int64
	BarberID     int64
	Date         string  // "YYYY-MM-DD" в зоне барбершопа
	ServiceIDs   []int64 // услуги подряд, длительности суммируются
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            string
	BarbershopID    int64
	BarberID        int64
	ServiceIDs      []int64
	DurationMinutes int
	Slots           []Slot
	// WaitlistOpen день рабочий, но свободных слотов нет
	WaitlistOpen bool
}

// Slot модель временного слота
type Slot struct {
	StartTime string    // "HH:MM" по местному времени
	StartAt   string    // "YYYY-MM-DDTHH:MM" по местному времени
	Instant   time.Time // абсолютный момент начала
}
