package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	notificationRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/notification"
)

// Service планировщик задач уведомлений по жизненному циклу бронирования
type Service struct {
	jobRepo            JobRepository
	defaultCountryCode string
	timeProvider       TimeProvider
	logger             Logger
}

// NewService создает новый экземпляр планировщика уведомлений
func NewService(jobRepo JobRepository, defaultCountryCode string, logger Logger) *Service {
	return &Service{
		jobRepo:            jobRepo,
		defaultCountryCode: defaultCountryCode,
		timeProvider:       &RealTimeProvider{},
		logger:             logger,
	}
}

// ScheduleBookingNotificationJobs создает задачи подтверждения и напоминаний для оплаченного бронирования
// Возвращает количество созданных задач. Повторный вызов ничего не дублирует.
// Если в контексте есть транзакция, задачи создаются в ней.
func (s *Service) ScheduleBookingNotificationJobs(ctx context.Context, bookingID int64) (int, error) {
	// 1. Собираем контекст бронирования
	nc, err := s.jobRepo.GetNotificationContext(ctx, bookingID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrContextNotFound) {
			s.logger.Warn("ScheduleJobs: booking id=%d not found", bookingID)
			return 0, ErrBookingNotFound
		}
		s.logger.Error("ScheduleJobs: failed to load context for booking id=%d: %v", bookingID, err)
		return 0, fmt.Errorf("%w: ScheduleJobs - load context: %v", ErrInternal, err)
	}

	booking := nc.Booking

	// 2. Отменённым и неподтверждённым бронированиям сообщения не положены
	if booking.IsCancelled() {
		s.logger.Info("ScheduleJobs: booking id=%d is cancelled, skipping", bookingID)
		return 0, nil
	}
	if !booking.IsPaid() {
		s.logger.Info("ScheduleJobs: booking id=%d is not confirmed (status=%s), skipping", bookingID, booking.PaymentStatus)
		return 0, nil
	}

	// 3. Без валидного номера отправлять некуда
	if _, ok := domain.NormalizeE164(nc.CustomerPhone, s.defaultCountryCode); !ok {
		s.logger.Warn("ScheduleJobs: booking id=%d has no valid customer phone, skipping", bookingID)
		return 0, nil
	}

	// 4. Планируем с учётом тарифа и настроек тенанта
	now := s.timeProvider.Now()
	planned := domain.PlanNotificationJobs(booking.StartAt, now, nc.Messaging)
	if len(planned) == 0 {
		gate := domain.CheckMessagingGate(nc.Messaging, domain.JobTypeBookingConfirm)
		s.logger.Info("ScheduleJobs: nothing to schedule for booking id=%d (gate=%s)", bookingID, gate.Reason)
		return 0, nil
	}

	// 5. Вставляем, пропуская уже существующие (booking_id, type)
	created, err := s.jobRepo.InsertSkipDuplicates(ctx, booking.ID, booking.BarbershopID, planned, now)
	if err != nil {
		s.logger.Error("ScheduleJobs: failed to insert jobs for booking id=%d: %v", bookingID, err)
		return 0, fmt.Errorf("%w: ScheduleJobs - insert jobs: %v", ErrInternal, err)
	}

	s.logger.Info("ScheduleJobs: booking id=%d planned=%d created=%d", bookingID, len(planned), created)
	return created, nil
}

// CancelPendingBookingNotificationJobs отменяет все ожидающие задачи бронирования
func (s *Service) CancelPendingBookingNotificationJobs(ctx context.Context, bookingID int64, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, fmt.Errorf("%w: cancel reason is required", ErrInvalidInput)
	}

	canceled, err := s.jobRepo.CancelPendingByBooking(ctx, bookingID, reason, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("CancelBookingJobs: booking id=%d: %v", bookingID, err)
		return 0, fmt.Errorf("%w: CancelBookingJobs - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CancelBookingJobs: booking id=%d canceled=%d reason=%s", bookingID, canceled, reason)
	return canceled, nil
}

// CancelFutureTenantNotificationJobs отменяет ожидающие задачи тенанта, запланированные на будущее
// Используется при понижении тарифа
func (s *Service) CancelFutureTenantNotificationJobs(ctx context.Context, barbershopID int64, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, fmt.Errorf("%w: cancel reason is required", ErrInvalidInput)
	}

	canceled, err := s.jobRepo.CancelFuturePendingByBarbershop(ctx, barbershopID, reason, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("CancelTenantJobs: barbershop id=%d: %v", barbershopID, err)
		return 0, fmt.Errorf("%w: CancelTenantJobs - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CancelTenantJobs: barbershop id=%d canceled=%d reason=%s", barbershopID, canceled, reason)
	return canceled, nil
}
