package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	"github.com/m04kA/SMC-BarberBooking/internal/service/availability"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// UseCase use case для получения доступных слотов мастера
type UseCase struct {
	barbershopRepo BarbershopRepository
	bookingRepo    BookingRepository
	txManager      TransactionManager
	zone           slottime.Zone
	settings       Settings
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	barbershopRepo BarbershopRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	zone slottime.Zone,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		barbershopRepo: barbershopRepo,
		bookingRepo:    bookingRepo,
		txManager:      txManager,
		zone:           zone,
		settings:       settings,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: barbershop=%d, barber=%d, date=%s, services=%v",
		req.BarbershopID, req.BarberID, req.Date, req.ServiceIDs)

	// 1. Валидация входных данных
	serviceIDs, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. День в зоне бизнеса
	dayStart, dayEnd, err := uc.zone.DayBoundsForDate(req.Date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid date %q: %v", req.Date, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	now := uc.timeProvider.Now()
	if err := checkHorizon(uc.zone, dayStart, now, uc.settings.MaxAdvanceDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}

	// 3-5. Барбершоп, услуги, часы и занятость читаются одним снимком
	var (
		duration int
		hours    domain.WeeklyHours
		bookings []*domain.Booking
	)
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		duration, hours, bookings, err = uc.loadDay(txCtx, req.BarbershopID, req.BarberID, serviceIDs, dayStart, dayEnd)
		return err
	})
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, b.Interval())
	}

	// 6. Расчёт слотов
	input := availability.Input{
		Zone:            uc.zone,
		Hours:           hours,
		Day:             dayStart,
		DurationMinutes: duration,
		StepMinutes:     uc.settings.StepMinutes,
		Buffer:          uc.settings.Buffer,
		Now:             now,
		Busy:            busy,
	}

	starts, err := availability.ComputeAvailableSlots(input)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}

	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, Slot{
			StartTime: uc.zone.FormatTime(start),
			StartAt:   uc.zone.FormatLocalDateTime(start),
			Instant:   start,
		})
	}

	waitlistOpen := false
	if len(slots) == 0 {
		waitlistOpen, err = availability.FitsAnyStart(input)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to check day capacity: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("GetAvailableSlots: %d slots for barber=%d on %s (duration %d min)",
		len(slots), req.BarberID, req.Date, duration)

	return &Response{
		Date:            req.Date,
		BarbershopID:    req.BarbershopID,
		BarberID:        req.BarberID,
		ServiceIDs:      serviceIDs,
		DurationMinutes: duration,
		Slots:           slots,
		WaitlistOpen:    waitlistOpen,
	}, nil
}

// loadDay данные барбершопа и мастера, нужные для расчёта слотов дня
func (uc *UseCase) loadDay(
	ctx context.Context,
	barbershopID, barberID int64,
	serviceIDs []int64,
	dayStart, dayEnd time.Time,
) (duration int, hours domain.WeeklyHours, bookings []*domain.Booking, err error) {
	// 3. Барбершоп и мастер
	if _, err := uc.barbershopRepo.GetByID(ctx, barbershopID); err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			uc.logger.Warn("GetAvailableSlots: barbershop id=%d not found", barbershopID)
			return 0, domain.WeeklyHours{}, nil, ErrBarbershopNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get barbershop id=%d: %v", barbershopID, err)
		return 0, domain.WeeklyHours{}, nil, fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}

	belongs, err := uc.barbershopRepo.BarberBelongsTo(ctx, barberID, barbershopID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to check barber id=%d: %v", barberID, err)
		return 0, domain.WeeklyHours{}, nil, fmt.Errorf("%w: failed to check barber: %v", ErrInternal, err)
	}
	if !belongs {
		uc.logger.Warn("GetAvailableSlots: barber id=%d not in barbershop id=%d", barberID, barbershopID)
		return 0, domain.WeeklyHours{}, nil, ErrBarberNotFound
	}

	// 4. Суммарная длительность услуг
	services, err := uc.barbershopRepo.GetServices(ctx, barbershopID, serviceIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get services: %v", err)
		return 0, domain.WeeklyHours{}, nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}
	if len(services) != len(serviceIDs) {
		uc.logger.Warn("GetAvailableSlots: requested %d services, found %d active", len(serviceIDs), len(services))
		return 0, domain.WeeklyHours{}, nil, ErrServiceNotFound
	}

	for _, s := range services {
		duration += s.DurationMinutes
	}

	// 5. Часы работы и занятость мастера
	hours, err = uc.barbershopRepo.GetWeeklyHours(ctx, barbershopID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get weekly hours: %v", err)
		return 0, domain.WeeklyHours{}, nil, fmt.Errorf("%w: failed to get weekly hours: %v", ErrInternal, err)
	}

	bookings, err = uc.bookingRepo.ListActiveByBarberAndRange(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return 0, domain.WeeklyHours{}, nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	return duration, hours, bookings, nil
}

// checkHorizon день не в прошлом и не дальше maxAdvanceDays от сегодня
func checkHorizon(zone slottime.Zone, dayStart, now time.Time, maxAdvanceDays int) error {
	today := zone.DayKey(now)
	day := zone.DayKey(dayStart)

	if day.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}
	if maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}
	return nil
}
