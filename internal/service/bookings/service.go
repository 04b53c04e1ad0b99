package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	barbershopRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/barbershop"
	bookingRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BarberBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// maxRangeDays максимальный период выборки бронирований барбершопа
const maxRangeDays = 31

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo    BookingRepository
	barbershopRepo BarbershopRepository
	scheduler      NotificationScheduler
	waitlist       WaitlistFulfiller
	txManager      TransactionManager
	zone           slottime.Zone
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	barbershopRepo BarbershopRepository,
	scheduler NotificationScheduler,
	waitlist WaitlistFulfiller,
	txManager TransactionManager,
	zone slottime.Zone,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		barbershopRepo: barbershopRepo,
		scheduler:      scheduler,
		waitlist:       waitlist,
		txManager:      txManager,
		zone:           zone,
		timeProvider:   realTimeProvider{},
		logger:         logger,
	}
}

// GetByID получает бронирование по ID
// Видят клиент и владелец барбершопа
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking, s.zone), nil
}

// GetUserBookings получает историю бронирований пользователя
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d by user=%d", req.UserID, req.RequesterID)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}
	if req.RequesterID != req.UserID {
		s.logger.Warn("GetUserBookings: user=%d cannot read bookings of user=%d", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	if req.ActiveOnly {
		active := bookings[:0]
		for _, b := range bookings {
			if b.IsActive() {
				active = append(active, b)
			}
		}
		bookings = active
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings, s.zone), nil
}

// GetBarbershopBookings бронирования барбершопа за период по местным датам
// Доступно только владельцу барбершопа
func (s *Service) GetBarbershopBookings(ctx context.Context, req *models.GetBarbershopBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetBarbershopBookings: barbershop=%d, user=%d, period=%s..%s, includeInactive=%t",
		req.BarbershopID, req.UserID, req.StartDate, req.EndDate, req.IncludeInactive)

	if err := s.checkOwnerAccess(ctx, "GetBarbershopBookings", req.BarbershopID, req.UserID); err != nil {
		return nil, err
	}

	// 1. Период в местных датах, конец включительно
	startDate := req.StartDate
	if startDate == "" {
		startDate = s.zone.FormatDate(s.timeProvider.Now())
	}
	endDate := req.EndDate
	if endDate == "" {
		endDate = startDate
	}

	from, _, err := s.zone.DayBoundsForDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate: %v", ErrInvalidTimeRange, err)
	}
	lastDay, to, err := s.zone.DayBoundsForDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate: %v", ErrInvalidTimeRange, err)
	}
	if lastDay.Before(from) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidTimeRange)
	}
	if s.zone.DayKey(lastDay).Sub(s.zone.DayKey(from)).Hours()/24 >= maxRangeDays {
		return nil, fmt.Errorf("%w: period longer than %d days", ErrInvalidTimeRange, maxRangeDays)
	}

	// 2. Выборка
	bookings, err := s.bookingRepo.ListByBarbershopAndRange(ctx, req.BarbershopID, from, to)
	if err != nil {
		s.logger.Error("GetBarbershopBookings: repository error for barbershop=%d: %v", req.BarbershopID, err)
		return nil, fmt.Errorf("%w: GetBarbershopBookings - repository error: %v", ErrInternal, err)
	}

	if !req.IncludeInactive {
		active := bookings[:0]
		for _, b := range bookings {
			if b.IsActive() {
				active = append(active, b)
			}
		}
		bookings = active
	}

	s.logger.Info("GetBarbershopBookings: fetched %d bookings for barbershop=%d", len(bookings), req.BarbershopID)
	return models.FromDomainBookingList(bookings, s.zone), nil
}

// Cancel мягко отменяет бронирование
// Клиент отменяет своё бронирование, владелец - любое бронирование барбершопа.
// Отложенные уведомления отменяются в той же транзакции, освободившийся слот
// после фиксации предлагается листу ожидания.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellationReason longer than %d", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	// 1. Получаем бронирование
	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	// 2. Права доступа
	if err := s.checkUserAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	// 3. Можно ли отменить
	now := s.timeProvider.Now()
	if !booking.CanBeCancelled() || booking.HasStarted(now) {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.PaymentStatus)
		return nil, ErrCannotCancel
	}

	var reason *string
	if req.CancellationReason != "" {
		reason = &req.CancellationReason
	}

	// 4. Отмена и снятие уведомлений одной транзакцией
	var canceledJobs int64
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Cancel(txCtx, bookingID, reason, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusChanged) {
				return ErrCannotCancel
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		n, err := s.scheduler.CancelPendingBookingNotificationJobs(txCtx, bookingID, domain.CancelReasonBookingCanceled)
		if err != nil {
			return fmt.Errorf("%w: Cancel - failed to cancel notifications: %v", ErrInternal, err)
		}
		canceledJobs = n
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCannotCancel) {
			s.logger.Warn("Cancel: booking id=%d changed concurrently", bookingID)
		} else {
			s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, err)
		}
		return nil, err
	}

	booking.ApplyCancelled(req.CancellationReason, now)
	s.logger.Info("Cancel: booking id=%d cancelled, %d notification jobs canceled", bookingID, canceledJobs)

	// 5. Освободившийся слот - листу ожидания
	s.offerToWaitlist(ctx, booking)

	return models.FromDomainBooking(booking, s.zone), nil
}

func (s *Service) offerToWaitlist(ctx context.Context, booking *domain.Booking) {
	if s.waitlist == nil {
		return
	}

	result, err := s.waitlist.TryFulfillWaitlistForReleasedSlot(ctx, fulfill_waitlist.SlotFromBooking(booking))
	if err != nil {
		s.logger.Error("Cancel: waitlist fulfillment for booking id=%d failed: %v", booking.ID, err)
		return
	}
	if result.Fulfilled() {
		s.logger.Info("Cancel: slot of booking id=%d given to waitlist entry id=%d, booking id=%d",
			booking.ID, result.EntryID, result.BookingID)
	}
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkUserAccess клиент бронирования или владелец барбершопа
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.UserID == userID {
		return nil
	}

	shop, err := s.barbershopRepo.GetByID(ctx, booking.BarbershopID)
	if err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			return ErrAccessDenied
		}
		return fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}
	if shop.OwnerID != userID {
		return ErrAccessDenied
	}

	return nil
}

func (s *Service) checkOwnerAccess(ctx context.Context, op string, barbershopID, userID int64) error {
	shop, err := s.barbershopRepo.GetByID(ctx, barbershopID)
	if err != nil {
		if errors.Is(err, barbershopRepo.ErrBarbershopNotFound) {
			s.logger.Warn("%s: barbershop id=%d not found", op, barbershopID)
			return ErrBarbershopNotFound
		}
		s.logger.Error("%s: failed to get barbershop id=%d: %v", op, barbershopID, err)
		return fmt.Errorf("%w: failed to get barbershop: %v", ErrInternal, err)
	}

	if shop.OwnerID != userID {
		s.logger.Warn("%s: user=%d is not the owner of barbershop=%d", op, userID, barbershopID)
		return ErrAccessDenied
	}

	return nil
}
