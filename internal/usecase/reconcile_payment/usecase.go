package reconcile_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/booking"
	stripeProvider "github.com/m04kA/SMC-BarberBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-BarberBooking/internal/usecase/fulfill_waitlist"
)

// UseCase сверка платежей с провайдером: webhook, ручной запрос и пачкой
type UseCase struct {
	bookingRepo  BookingRepository
	provider     PaymentProvider
	scheduler    NotificationScheduler
	waitlist     WaitlistFulfiller
	txManager    TransactionManager
	metrics      MetricsCollector
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	provider PaymentProvider,
	scheduler NotificationScheduler,
	waitlist WaitlistFulfiller,
	txManager TransactionManager,
	metrics MetricsCollector,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		provider:     provider,
		scheduler:    scheduler,
		waitlist:     waitlist,
		txManager:    txManager,
		metrics:      metrics,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ReconcileBySessionID приводит бронирование к авторитетному состоянию checkout-сессии
// Повторный вызов с тем же состоянием провайдера ничего не меняет
func (uc *UseCase) ReconcileBySessionID(ctx context.Context, sessionID string, hint Hint) (*Result, error) {
	if hint.Source == "" {
		hint.Source = SourceManual
	}

	result, err := uc.reconcile(ctx, sessionID, hint)
	if uc.metrics != nil {
		switch {
		case err == nil:
			uc.metrics.IncReconciliation(string(hint.Source), string(result.Outcome))
		case errors.Is(err, ErrConflict):
			uc.metrics.IncReconciliation(string(hint.Source), "conflict")
		default:
			uc.metrics.IncReconciliation(string(hint.Source), "error")
		}
	}
	return result, err
}

func (uc *UseCase) reconcile(ctx context.Context, sessionID string, hint Hint) (*Result, error) {
	// 1. Валидация входных данных
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionID is required", ErrInvalidInput)
	}

	uc.logger.Info("Reconcile: session=%s, source=%s", sessionID, hint.Source)

	// 2. Авторитетное состояние сессии, запрос к провайдеру вне транзакции
	session, err := uc.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, stripeProvider.ErrSessionNotFound) {
			uc.logger.Warn("Reconcile: session=%s not found at provider", sessionID)
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		uc.logger.Error("Reconcile: failed to retrieve session=%s: %v", sessionID, err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	event, decided := session.PaymentEvent()
	if hint.ExpectPaid && !session.IsPaid() {
		uc.logger.Warn("Reconcile: session=%s reported completed but provider says payment_status=%s",
			sessionID, session.PaymentStatus)
		return nil, fmt.Errorf("%w: session %s is not paid", ErrConflict, sessionID)
	}

	result := &Result{SessionID: sessionID}
	var released *fulfill_waitlist.ReleasedSlot

	// 3. Переход автомата оплаты в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.findBooking(txCtx, sessionID, session)
		if err != nil {
			return err
		}
		if hint.UserID != nil && booking.UserID != *hint.UserID {
			return fmt.Errorf("%w: session %s", ErrBookingNotFound, sessionID)
		}

		result.BookingID = booking.ID
		result.PaymentStatus = booking.PaymentStatus

		if !decided {
			result.Outcome = OutcomePending
			return nil
		}

		transition := domain.DecidePaymentTransition(booking, event)
		result.Transition = transition.Kind
		result.Reason = transition.Reason

		switch {
		case transition.NeedsReview():
			result.Outcome = OutcomeManualReview
			uc.logger.Warn("Reconcile: booking id=%d needs manual review: %s (%s)",
				booking.ID, transition.Kind, transition.Reason)
			return nil
		case !transition.IsProductive():
			result.Outcome = OutcomeUnchanged
			return nil
		}

		now := uc.timeProvider.Now()
		expected := booking.PaymentStatus
		wasActive := booking.IsActive()

		if transition.Kind == domain.TransitionMarkPaid {
			booking.ApplyPaid(event.ChargeID, now)
		} else {
			booking.ApplyFailed(now)
		}

		if err := uc.bookingRepo.UpdatePayment(txCtx, booking, expected); err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrSlotTaken):
				return errRevivalBlocked
			case errors.Is(err, bookingRepo.ErrStatusChanged):
				return fmt.Errorf("%w: booking %d payment status changed concurrently", ErrConflict, booking.ID)
			}
			return fmt.Errorf("%w: failed to update payment: %v", ErrInternal, err)
		}
		result.PaymentStatus = booking.PaymentStatus

		// 4. Побочные эффекты только у продуктивных переходов
		if transition.Kind == domain.TransitionMarkPaid {
			result.Outcome = OutcomeMarkedPaid
			scheduled, err := uc.scheduler.ScheduleBookingNotificationJobs(txCtx, booking.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to schedule notifications: %v", ErrInternal, err)
			}
			result.JobsScheduled = scheduled
			return nil
		}

		result.Outcome = OutcomeMarkedFailed
		canceled, err := uc.scheduler.CancelPendingBookingNotificationJobs(txCtx, booking.ID, domain.CancelReasonPaymentFailed)
		if err != nil {
			return fmt.Errorf("%w: failed to cancel notifications: %v", ErrInternal, err)
		}
		result.JobsCanceled = canceled

		if wasActive {
			slot := fulfill_waitlist.SlotFromBooking(booking)
			released = &slot
		}
		return nil
	})

	if errors.Is(err, errRevivalBlocked) {
		uc.logger.Warn("Reconcile: booking id=%d paid after cancellation but slot is taken, manual review",
			result.BookingID)
		result.Outcome = OutcomeManualReview
		result.Transition = domain.TransitionMarkPaid
		result.Reason = "paid booking cannot be restored: slot taken"
		return result, nil
	}
	if err != nil {
		if !errors.Is(err, ErrBookingNotFound) && !errors.Is(err, ErrConflict) {
			uc.logger.Error("Reconcile: session=%s failed: %v", sessionID, err)
		}
		return nil, err
	}

	// 5. Освободившийся слот отдаём листу ожидания после фиксации
	if released != nil && uc.waitlist != nil {
		wl, err := uc.waitlist.TryFulfillWaitlistForReleasedSlot(ctx, *released)
		if err != nil {
			uc.logger.Error("Reconcile: waitlist fulfillment for booking id=%d failed: %v", result.BookingID, err)
		} else {
			result.WaitlistReason = string(wl.Reason)
		}
	}

	uc.logger.Info("Reconcile: session=%s booking id=%d outcome=%s transition=%s",
		sessionID, result.BookingID, result.Outcome, result.Transition)

	return result, nil
}

// findBooking ищет бронирование по сессии, затем по ID из metadata сессии
// Второй путь нужен, пока ссылка на сессию ещё не сохранена
func (uc *UseCase) findBooking(ctx context.Context, sessionID string, session *domain.ProviderSession) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetBySessionID(ctx, sessionID)
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, fmt.Errorf("%w: failed to get booking by session: %v", ErrInternal, err)
	}

	if session.BookingID == nil {
		return nil, fmt.Errorf("%w: session %s", ErrBookingNotFound, sessionID)
	}

	booking, err = uc.bookingRepo.GetByID(ctx, *session.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: session %s, booking %d", ErrBookingNotFound, sessionID, *session.BookingID)
		}
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.StripeSessionID != nil && *booking.StripeSessionID != sessionID {
		return nil, fmt.Errorf("%w: booking %d is linked to another session", ErrConflict, booking.ID)
	}

	return booking, nil
}

// HandleWebhook проверяет подпись события и сверяет указанную в нём сессию
// Неподдерживаемые события подтверждаются без изменений
func (uc *UseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*Result, error) {
	event, err := uc.provider.ParseWebhook(payload, signature)
	if err != nil {
		uc.logger.Warn("Webhook: rejected event: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	if !event.IsSupported() || event.SessionID == "" {
		uc.logger.Info("Webhook: ignoring event id=%s kind=%s", event.ID, event.Kind)
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	hint := Hint{
		Source: SourceWebhook,
		ExpectPaid: event.Kind == domain.ProviderEventCompleted ||
			event.Kind == domain.ProviderEventAsyncPaymentSucceeded,
	}

	uc.logger.Info("Webhook: event id=%s kind=%s session=%s", event.ID, event.Kind, event.SessionID)

	result, err := uc.ReconcileBySessionID(ctx, event.SessionID, hint)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	return result, nil
}
