package reconcile_payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
)

// ReconcileForUser сверяет неподтверждённые бронирования пользователя
func (uc *UseCase) ReconcileForUser(ctx context.Context, userID int64) (*SweepSummary, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	hint := Hint{Source: SourceSweepUser, UserID: &userID}
	return uc.sweep(ctx, domain.PendingPaymentFilter{UserID: &userID, Limit: uc.opts.UserLimit}, hint)
}

// ReconcileForTenant сверяет неподтверждённые бронирования барбершопа
func (uc *UseCase) ReconcileForTenant(ctx context.Context, barbershopID int64) (*SweepSummary, error) {
	if barbershopID <= 0 {
		return nil, fmt.Errorf("%w: barbershopID must be positive", ErrInvalidInput)
	}

	hint := Hint{Source: SourceSweepTenant}
	return uc.sweep(ctx, domain.PendingPaymentFilter{BarbershopID: &barbershopID, Limit: uc.opts.TenantLimit}, hint)
}

// sweep ошибка по одному бронированию попадает в сводку и не прерывает остальные
func (uc *UseCase) sweep(ctx context.Context, filter domain.PendingPaymentFilter, hint Hint) (*SweepSummary, error) {
	summary := &SweepSummary{
		RunID:  uuid.New().String(),
		Errors: make([]ItemError, 0),
	}

	// 1. Окно просмотра: не старше lookback и не моложе minAge
	now := uc.timeProvider.Now()
	filter.CreatedAfter = now.Add(-uc.opts.Lookback)
	filter.CreatedBefore = now.Add(-uc.opts.MinAge)

	// 2. Кандидаты на сверку
	bookings, err := uc.bookingRepo.ListPendingStripe(ctx, filter)
	if err != nil {
		uc.logger.Error("Sweep[%s]: failed to list pending bookings: %v", summary.RunID, err)
		return nil, fmt.Errorf("%w: failed to list pending bookings: %v", ErrInternal, err)
	}

	uc.logger.Info("Sweep[%s]: source=%s, candidates=%d", summary.RunID, hint.Source, len(bookings))

	// 3. Сверка по одному, каждая со своим таймаутом
	for _, booking := range bookings {
		if ctx.Err() != nil {
			uc.logger.Warn("Sweep[%s]: stopped early: %v", summary.RunID, ctx.Err())
			break
		}
		if booking.StripeSessionID == nil {
			continue
		}

		summary.Scanned++
		res, err := uc.reconcileItem(ctx, *booking.StripeSessionID, hint)
		if err != nil {
			uc.logger.Warn("Sweep[%s]: booking id=%d session=%s failed: %v",
				summary.RunID, booking.ID, *booking.StripeSessionID, err)
			summary.Errors = append(summary.Errors, ItemError{
				BookingID: booking.ID,
				SessionID: *booking.StripeSessionID,
				Error:     err.Error(),
			})
			continue
		}
		summary.add(res)
	}

	uc.logger.Info("Sweep[%s]: scanned=%d paid=%d failed=%d pending=%d review=%d errors=%d",
		summary.RunID, summary.Scanned, summary.Paid, summary.Failed, summary.Pending,
		summary.ManualReview, len(summary.Errors))

	return summary, nil
}

func (uc *UseCase) reconcileItem(ctx context.Context, sessionID string, hint Hint) (*Result, error) {
	if uc.opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.ItemTimeout)
		defer cancel()
	}
	return uc.ReconcileBySessionID(ctx, sessionID, hint)
}
