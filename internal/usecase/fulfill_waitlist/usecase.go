package fulfill_waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	bookingRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/booking"
	waitlistRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// UseCase выдача освободившегося слота первому клиенту из листа ожидания
type UseCase struct {
	waitlistRepo WaitlistRepository
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	scheduler    NotificationScheduler
	txManager    TransactionManager
	metrics      MetricsCollector
	zone         slottime.Zone
	maxAttempts  int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	waitlistRepo WaitlistRepository,
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	scheduler NotificationScheduler,
	txManager TransactionManager,
	metrics MetricsCollector,
	zone slottime.Zone,
	maxAttempts int,
	logger Logger,
) *UseCase {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultWaitlistMaxAttempts
	}
	return &UseCase{
		waitlistRepo: waitlistRepo,
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		scheduler:    scheduler,
		txManager:    txManager,
		metrics:      metrics,
		zone:         zone,
		maxAttempts:  maxAttempts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// TryFulfillWaitlistForReleasedSlot отдаёт освободившийся слот самой ранней активной записи
// Всё выполняется в одной транзакции. Отказ выдать слот возвращается как Reason, а не ошибка.
func (uc *UseCase) TryFulfillWaitlistForReleasedSlot(ctx context.Context, slot ReleasedSlot) (*Result, error) {
	result, err := uc.tryFulfill(ctx, slot)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.IncWaitlistFulfillment(string(result.Reason))
	}
	return result, nil
}

func (uc *UseCase) tryFulfill(ctx context.Context, slot ReleasedSlot) (*Result, error) {
	// 1. Лист ожидания ведётся по конкретному мастеру
	if slot.BarberID == nil {
		uc.logger.Info("FulfillWaitlist: released slot has no barber, skipping")
		return &Result{Reason: ReasonNoBarber}, nil
	}

	uc.logger.Info("FulfillWaitlist: barbershop=%d, barber=%d, service=%d, start=%s",
		slot.BarbershopID, *slot.BarberID, slot.ServiceID, slot.StartAt.Format(time.RFC3339))

	// 2. День слота в зоне бизнеса
	if slot.StartAt.IsZero() {
		uc.logger.Warn("FulfillWaitlist: released slot has no start time")
		return &Result{Reason: ReasonInvalidDay}, nil
	}
	day := uc.zone.DayKey(slot.StartAt)

	// 3. Услуга и длительность слота
	service, err := uc.serviceRepo.GetService(ctx, slot.ServiceID)
	if err != nil {
		if errors.Is(err, barbershopRepo.ErrServiceNotFound) {
			uc.logger.Warn("FulfillWaitlist: service id=%d not found", slot.ServiceID)
			return &Result{Reason: ReasonInvalidDuration}, nil
		}
		uc.logger.Error("FulfillWaitlist: failed to get service id=%d: %v", slot.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	duration := slot.DurationMinutes
	if duration <= 0 {
		duration = service.DurationMinutes
	}
	if duration <= 0 {
		uc.logger.Warn("FulfillWaitlist: cannot derive duration for service id=%d", slot.ServiceID)
		return &Result{Reason: ReasonInvalidDuration}, nil
	}

	key := domain.WaitlistKey{
		BarbershopID: slot.BarbershopID,
		BarberID:     *slot.BarberID,
		ServiceID:    slot.ServiceID,
		DateDay:      day,
	}

	result := &Result{}

	// 4. Ограниченный цикл выдачи в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		for result.Attempts < uc.maxAttempts {
			result.Attempts++
			now := uc.timeProvider.Now()

			// 4.1. Самая ранняя активная запись
			entry, err := uc.waitlistRepo.GetOldestActive(txCtx, key)
			if err != nil {
				if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
					result.Reason = ReasonNoActiveEntry
					return nil
				}
				return fmt.Errorf("%w: get oldest entry: %v", ErrInternal, err)
			}

			// 4.2. Длительность услуги должна совпадать с освободившимся слотом
			if service.DurationMinutes != duration {
				expired, err := uc.waitlistRepo.Expire(txCtx, entry.ID, now)
				if err != nil {
					return fmt.Errorf("%w: expire entry id=%d: %v", ErrInternal, entry.ID, err)
				}
				if expired {
					result.Expired++
					uc.logger.Info("FulfillWaitlist: entry id=%d expired, duration %d != %d",
						entry.ID, service.DurationMinutes, duration)
				}
				continue
			}

			// 4.3. Условный захват, проигрыш гонки - к следующей записи
			claimed, err := uc.waitlistRepo.Claim(txCtx, entry.ID, now)
			if err != nil {
				return fmt.Errorf("%w: claim entry id=%d: %v", ErrInternal, entry.ID, err)
			}
			if !claimed {
				uc.logger.Info("FulfillWaitlist: entry id=%d claimed concurrently", entry.ID)
				continue
			}

			// 4.4. Бронирование для клиента из листа ожидания, оплата на месте
			barberID := *slot.BarberID
			confirmedAt := now
			booking := &domain.Booking{
				BarbershopID:         slot.BarbershopID,
				BarberID:             &barberID,
				ServiceID:            slot.ServiceID,
				ServiceIDs:           []int64{slot.ServiceID},
				UserID:               entry.UserID,
				Date:                 day,
				StartAt:              slot.StartAt,
				EndAt:                slot.StartAt.Add(time.Duration(duration) * time.Minute),
				TotalDurationMinutes: duration,
				TotalPriceInCents:    service.PriceInCents,
				PaymentMethod:        domain.PaymentMethodInPerson,
				PaymentStatus:        domain.PaymentStatusPaid,
				PaymentConfirmedAt:   &confirmedAt,
				Source:               domain.BookingSourceWaitlist,
			}

			created, err := uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				if errors.Is(err, bookingRepo.ErrSlotTaken) {
					return errSlotTaken
				}
				return fmt.Errorf("%w: create booking: %v", ErrInternal, err)
			}

			// 4.5. Связываем запись с бронированием
			if err := uc.waitlistRepo.LinkBooking(txCtx, entry.ID, created.ID); err != nil {
				return fmt.Errorf("%w: link entry id=%d: %v", ErrInternal, entry.ID, err)
			}

			// 4.6. Подтверждение и напоминания
			if _, err := uc.scheduler.ScheduleBookingNotificationJobs(txCtx, created.ID); err != nil {
				return fmt.Errorf("%w: schedule notifications: %v", ErrInternal, err)
			}

			result.Reason = ReasonFulfilled
			result.EntryID = entry.ID
			result.BookingID = created.ID
			result.UserID = entry.UserID
			return nil
		}

		result.Reason = ReasonMaxAttemptsReached
		return nil
	})

	if errors.Is(err, errSlotTaken) {
		uc.logger.Warn("FulfillWaitlist: slot %s for barber=%d is already taken",
			slot.StartAt.Format(time.RFC3339), *slot.BarberID)
		return &Result{Reason: ReasonSlotTaken, Attempts: result.Attempts}, nil
	}
	if err != nil {
		uc.logger.Error("FulfillWaitlist: transaction failed: %v", err)
		return nil, err
	}

	switch result.Reason {
	case ReasonFulfilled:
		uc.logger.Info("FulfillWaitlist: entry id=%d got booking id=%d (user=%d)",
			result.EntryID, result.BookingID, result.UserID)
	case ReasonMaxAttemptsReached:
		uc.logger.Warn("FulfillWaitlist: gave up after %d attempts, expired=%d", result.Attempts, result.Expired)
	default:
		uc.logger.Info("FulfillWaitlist: not fulfilled, reason=%s, expired=%d", result.Reason, result.Expired)
	}

	return result, nil
}
