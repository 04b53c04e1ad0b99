package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	bookingRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BarberBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-BarberBooking/internal/service/availability"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
	"github.com/m04kA/SMC-BarberBooking/pkg/pgerrors"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	barbershopRepo BarbershopRepository
	payments       PaymentProvider
	scheduler      NotificationScheduler
	waitlist       WaitlistFulfiller
	txManager      TransactionManager
	metrics        MetricsCollector
	zone           slottime.Zone
	settings       Settings
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	barbershopRepo BarbershopRepository,
	payments PaymentProvider,
	scheduler NotificationScheduler,
	waitlist WaitlistFulfiller,
	txManager TransactionManager,
	metrics MetricsCollector,
	zone slottime.Zone,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		barbershopRepo: barbershopRepo,
		payments:       payments,
		scheduler:      scheduler,
		waitlist:       waitlist,
		txManager:      txManager,
		metrics:        metrics,
		zone:           zone,
		settings:       settings,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка свободного слота здесь рекомендательная, занятость гарантирует ограничение БД
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, barbershop=%d, barber=%d, services=%v, start=%s, payment=%s",
		req.UserID, req.BarbershopID, req.BarberID, req.ServiceIDs, req.StartAt, req.PaymentMethod)

	// 1. Валидация входных данных
	serviceIDs, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Начало по местному времени
	start, err := uc.zone.ParseLocalDateTime(req.StartAt)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid startAt %q: %v", req.StartAt, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := uc.timeProvider.Now()
	if err := validateStart(uc.zone, start, now, uc.settings.Buffer, uc.settings.MaxAdvanceDays); err != nil {
		uc.logger.Warn("CreateBooking: start validation failed: %v", err)
		return nil, err
	}

	// 3. Барбершоп, мастер и услуги
	if _, err := uc.barbershopRepo.GetByID(ctx, req.BarbershopID); err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			uc.logger.Warn("CreateBooking: barbershop id=%d not found", req.BarbershopID)
			return nil, ErrBarbershopNotFound
		}
		uc.logger.Error("CreateBooking: failed to get barbershop id=%d: %v", req.BarbershopID, err)
		return nil, fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}

	belongs, err := uc.barbershopRepo.BarberBelongsTo(ctx, req.BarberID, req.BarbershopID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to check barber: %v", ErrInternal, err)
	}
	if !belongs {
		uc.logger.Warn("CreateBooking: barber id=%d not in barbershop id=%d", req.BarberID, req.BarbershopID)
		return nil, ErrBarberNotFound
	}

	services, err := uc.barbershopRepo.GetServices(ctx, req.BarbershopID, serviceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}
	if len(services) != len(serviceIDs) {
		uc.logger.Warn("CreateBooking: requested %d services, found %d active", len(serviceIDs), len(services))
		return nil, ErrServiceNotFound
	}

	// 4. Суммы по услугам в порядке запроса
	duration, price, names := summarize(services, serviceIDs)
	if duration > domain.MaxBookingDurationMinutes {
		return nil, fmt.Errorf("%w: total duration %d exceeds %d minutes", ErrInvalidInput, duration, domain.MaxBookingDurationMinutes)
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	// 5. Рекомендательная проверка слота
	if err := uc.checkSlot(ctx, req, start, duration, now); err != nil {
		return nil, err
	}

	// 6. Бронирование: на месте - сразу PAID, STRIPE - PENDING до оплаты
	barberID := req.BarberID
	booking := &domain.Booking{
		BarbershopID:         req.BarbershopID,
		BarberID:             &barberID,
		ServiceID:            serviceIDs[0],
		ServiceIDs:           serviceIDs,
		UserID:               req.UserID,
		Date:                 uc.zone.DayKey(start),
		StartAt:              start,
		EndAt:                end,
		TotalDurationMinutes: duration,
		TotalPriceInCents:    price,
		PaymentMethod:        req.PaymentMethod,
		PaymentStatus:        domain.PaymentStatusPending,
		Source:               domain.BookingSourceDirect,
	}
	if req.PaymentMethod == domain.PaymentMethodInPerson {
		confirmedAt := now
		booking.PaymentStatus = domain.PaymentStatusPaid
		booking.PaymentConfirmedAt = &confirmedAt
	}

	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		c, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				return ErrSlotTaken
			}
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		created = c

		if created.IsPaid() {
			if _, err := uc.scheduler.ScheduleBookingNotificationJobs(txCtx, created.ID); err != nil {
				return fmt.Errorf("%w: failed to schedule notifications: %v", ErrInternal, err)
			}
		}
		return nil
	})

	if pgerrors.IsSerializationFailure(err) {
		// конкурирующая запись на тот же интервал, конфликт обнаружен при фиксации
		err = ErrSlotTaken
	}
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			if uc.metrics != nil {
				uc.metrics.IncBookingConflict()
			}
			uc.logger.Warn("CreateBooking: slot %s for barber=%d taken concurrently", req.StartAt, req.BarberID)
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d (%s, %s)", created.ID, created.PaymentMethod, created.PaymentStatus)

	if created.PaymentMethod != domain.PaymentMethodStripe {
		return &Response{Booking: created}, nil
	}

	// 7. Checkout-сессия создаётся после фиксации, вне транзакции
	return uc.startCheckout(ctx, req, created, names)
}

func (uc *UseCase) checkSlot(ctx context.Context, req *Request, start time.Time, duration int, now time.Time) error {
	hours, err := uc.barbershopRepo.GetWeeklyHours(ctx, req.BarbershopID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get weekly hours: %v", err)
		return fmt.Errorf("%w: failed to get weekly hours: %v", ErrInternal, err)
	}

	input := availability.Input{
		Zone:            uc.zone,
		Hours:           hours,
		Day:             start,
		DurationMinutes: duration,
		StepMinutes:     uc.settings.StepMinutes,
		Buffer:          uc.settings.Buffer,
		Now:             now,
	}

	onGrid, err := availability.IsSlotAvailable(input, start)
	if err != nil {
		return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
	}
	if !onGrid {
		uc.logger.Warn("CreateBooking: %s is outside working hours or off the grid", req.StartAt)
		return ErrInvalidTimeSlot
	}

	dayStart, dayEnd := uc.zone.DayBounds(start)
	bookings, err := uc.bookingRepo.ListActiveByBarberAndRange(ctx, req.BarberID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}
	for _, b := range bookings {
		input.Busy = append(input.Busy, b.Interval())
	}

	free, err := availability.IsSlotAvailable(input, start)
	if err != nil {
		return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
	}
	if !free {
		uc.logger.Warn("CreateBooking: slot %s for barber=%d is taken", req.StartAt, req.BarberID)
		return ErrSlotTaken
	}

	return nil
}

// startCheckout при ошибке провайдера бронирование помечается FAILED и слот освобождается
func (uc *UseCase) startCheckout(ctx context.Context, req *Request, booking *domain.Booking, names []string) (*Response, error) {
	session, err := uc.payments.CreateCheckoutSession(ctx, stripe.CheckoutRequest{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		Description:   strings.Join(names, ", "),
		AmountInCents: booking.TotalPriceInCents,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: checkout for booking id=%d failed: %v", booking.ID, err)
		uc.markCheckoutFailed(ctx, booking)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if err := uc.bookingRepo.SetStripeSession(ctx, booking.ID, session.ID, uc.timeProvider.Now()); err != nil {
		uc.logger.Error("CreateBooking: failed to link session %s to booking id=%d: %v", session.ID, booking.ID, err)
		uc.markCheckoutFailed(ctx, booking)
		return nil, fmt.Errorf("%w: failed to link checkout session: %v", ErrInternal, err)
	}

	booking.StripeSessionID = &session.ID
	uc.logger.Info("CreateBooking: booking id=%d awaits payment in session %s", booking.ID, session.ID)

	return &Response{Booking: booking, CheckoutURL: session.URL}, nil
}

// markCheckoutFailed PENDING -> FAILED, освободившийся слот предлагается листу ожидания
func (uc *UseCase) markCheckoutFailed(ctx context.Context, booking *domain.Booking) {
	ctx = context.WithoutCancel(ctx)

	if err := uc.bookingRepo.MarkCheckoutFailed(ctx, booking.ID, uc.timeProvider.Now()); err != nil {
		uc.logger.Error("CreateBooking: failed to release booking id=%d after checkout failure: %v", booking.ID, err)
		return
	}

	if uc.waitlist == nil {
		return
	}

	result, err := uc.waitlist.TryFulfillWaitlistForReleasedSlot(ctx, fulfill_waitlist.SlotFromBooking(booking))
	if err != nil {
		uc.logger.Error("CreateBooking: waitlist fulfillment for booking id=%d failed: %v", booking.ID, err)
		return
	}
	if result.Fulfilled() {
		uc.logger.Info("CreateBooking: slot of booking id=%d given to waitlist entry id=%d, booking id=%d",
			booking.ID, result.EntryID, result.BookingID)
	}
}

// summarize длительность, цена и названия услуг в порядке запроса
func summarize(services []*domain.Service, order []int64) (int, int64, []string) {
	byID := make(map[int64]*domain.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	duration := 0
	var price int64
	names := make([]string, 0, len(order))
	for _, id := range order {
		s := byID[id]
		duration += s.DurationMinutes
		price += s.PriceInCents
		names = append(names, s.Name)
	}
	return duration, price, names
}
