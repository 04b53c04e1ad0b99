package dispatch_notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	notificationRepo "github.com/m04kA/SMC-BarberBooking/internal/infra/storage/notification"
	"github.com/m04kA/SMC-BarberBooking/pkg/slottime"
)

// UseCase прогон отправки наступивших уведомлений
type UseCase struct {
	jobRepo      JobRepository
	sender       Sender
	limiter      Limiter
	metrics      MetricsCollector
	zone         slottime.Zone
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	jobRepo JobRepository,
	sender Sender,
	limiter Limiter,
	metrics MetricsCollector,
	zone slottime.Zone,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = domain.DefaultNotificationMaxAttempts
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxJobsPerRun <= 0 {
		opts.MaxJobsPerRun = opts.BatchSize
	}

	return &UseCase{
		jobRepo:      jobRepo,
		sender:       sender,
		limiter:      limiter,
		metrics:      metrics,
		zone:         zone,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Run отправляет наступившие задачи пачками до лимита прогона
// Ошибка по одной задаче не прерывает остальные. Прогоны могут идти параллельно,
// задачу отправляет только тот, кто её захватил.
func (uc *UseCase) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String()}
	started := uc.timeProvider.Now()

	uc.logger.Info("Dispatch[%s]: started, batch=%d, cap=%d", summary.RunID, uc.opts.BatchSize, uc.opts.MaxJobsPerRun)

	defer func() {
		if uc.metrics != nil {
			uc.metrics.ObserveDispatchRun(uc.timeProvider.Now().Sub(started))
		}
	}()

	var cursor *domain.JobCursor
	for summary.Scanned < uc.opts.MaxJobsPerRun {
		if ctx.Err() != nil {
			uc.logger.Warn("Dispatch[%s]: stopped early: %v", summary.RunID, ctx.Err())
			break
		}

		limit := uc.opts.BatchSize
		if rest := uc.opts.MaxJobsPerRun - summary.Scanned; rest < limit {
			limit = rest
		}

		// 1. Следующая пачка наступивших задач по (scheduled_at, id)
		jobs, err := uc.jobRepo.ListDue(ctx, uc.timeProvider.Now(), cursor, limit)
		if err != nil {
			uc.logger.Error("Dispatch[%s]: failed to list due jobs: %v", summary.RunID, err)
			return summary, fmt.Errorf("%w: failed to list due jobs: %v", ErrInternal, err)
		}

		// 2. Каждая задача обрабатывается независимо
		for _, job := range jobs {
			summary.Scanned++
			uc.record(summary, uc.processJob(ctx, summary.RunID, job))
			cursor = &domain.JobCursor{ScheduledAt: job.ScheduledAt, ID: job.ID}
		}

		if len(jobs) < limit {
			break
		}
	}

	uc.logger.Info("Dispatch[%s]: done, scanned=%d sent=%d retried=%d failed=%d canceled=%d skipped=%d errors=%d",
		summary.RunID, summary.Scanned, summary.Sent, summary.Retried, summary.Failed,
		summary.Canceled, summary.ClaimSkipped, summary.Errors)

	return summary, nil
}

func (uc *UseCase) record(summary *Summary, outcome string) {
	switch outcome {
	case outcomeSent:
		summary.Sent++
	case outcomeRetried:
		summary.Retried++
	case outcomeFailed:
		summary.Failed++
	case outcomeCanceled:
		summary.Canceled++
	case outcomeClaimSkipped:
		summary.ClaimSkipped++
	default:
		summary.Errors++
	}
	if uc.metrics != nil {
		uc.metrics.IncDispatchJob(outcome)
	}
}

func (uc *UseCase) processJob(ctx context.Context, runID string, listed *domain.NotificationJob) string {
	now := uc.timeProvider.Now()

	// 1. Эксклюзивный захват PENDING -> SENDING, дальше работаем со строкой из захвата
	job, err := uc.jobRepo.Claim(ctx, listed.ID, now)
	if err != nil {
		uc.logger.Error("Dispatch[%s]: failed to claim job id=%d: %v", runID, listed.ID, err)
		return outcomeError
	}
	if job == nil {
		return outcomeClaimSkipped
	}

	// Захваченная задача должна выйти из SENDING даже после отмены прогона
	writeCtx := context.WithoutCancel(ctx)

	// 2. Актуальное состояние бронирования и настроек барбершопа
	nctx, err := uc.jobRepo.GetNotificationContext(ctx, job.BookingID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrContextNotFound) {
			return uc.cancel(writeCtx, runID, job, cancelReasonContextNotFound)
		}
		uc.logger.Error("Dispatch[%s]: failed to load context for job id=%d: %v", runID, job.ID, err)
		uc.release(ctx, runID, job)
		return outcomeError
	}

	if nctx.Booking.IsCancelled() {
		return uc.cancel(writeCtx, runID, job, domain.CancelReasonBookingCanceled)
	}
	if !nctx.Booking.IsPaid() {
		return uc.cancel(writeCtx, runID, job, cancelReasonNotPaid)
	}

	// 3. Тариф и переключатели барбершопа
	if gate := domain.CheckMessagingGate(nctx.Messaging, job.Type); !gate.Allowed {
		return uc.cancel(writeCtx, runID, job, gate.Reason)
	}

	// 4. Номер получателя
	to, ok := domain.NormalizeE164(nctx.CustomerPhone, uc.opts.DefaultCountryCode)
	if !ok {
		return uc.failAttempt(writeCtx, runID, job, errInvalidPhone)
	}

	msg := buildMessage(job.Type, to, nctx, uc.zone, uc.opts.Templates)

	// 5. Ограничение частоты отправок
	if uc.limiter != nil {
		if err := uc.limiter.Wait(ctx); err != nil {
			uc.logger.Warn("Dispatch[%s]: rate limiter aborted job id=%d: %v", runID, job.ID, err)
			uc.release(ctx, runID, job)
			return outcomeError
		}
	}

	// 6. Отправка с таймаутом, таймаут считается неудачной попыткой
	sendCtx := ctx
	if uc.opts.SendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, uc.opts.SendTimeout)
		defer cancel()
	}

	providerID, err := uc.sender.Send(sendCtx, msg)
	if err != nil {
		uc.logger.Warn("Dispatch[%s]: send failed for job id=%d (%s): %v", runID, job.ID, job.Type, err)
		return uc.failAttempt(writeCtx, runID, job, err.Error())
	}

	if err := uc.jobRepo.MarkSent(writeCtx, job.ID, uc.timeProvider.Now()); err != nil {
		uc.logger.Error("Dispatch[%s]: job id=%d sent as %s but not marked: %v", runID, job.ID, providerID, err)
		return outcomeError
	}

	uc.logger.Info("Dispatch[%s]: job id=%d (%s) for booking=%d sent as %s",
		runID, job.ID, job.Type, job.BookingID, providerID)
	return outcomeSent
}

func (uc *UseCase) cancel(ctx context.Context, runID string, job *domain.NotificationJob, reason string) string {
	if err := uc.jobRepo.MarkCanceled(ctx, job.ID, reason, uc.timeProvider.Now()); err != nil {
		uc.logger.Error("Dispatch[%s]: failed to cancel job id=%d: %v", runID, job.ID, err)
		return outcomeError
	}
	uc.logger.Info("Dispatch[%s]: job id=%d canceled: %s", runID, job.ID, reason)
	return outcomeCanceled
}

// failAttempt увеличивает счётчик попыток: повтор с задержкой или FAILED на лимите
func (uc *UseCase) failAttempt(ctx context.Context, runID string, job *domain.NotificationJob, cause string) string {
	now := uc.timeProvider.Now()
	attempts := job.Attempts + 1
	lastError := domain.TruncateError(cause, domain.MaxLastErrorLength)

	if attempts >= uc.opts.MaxAttempts {
		if err := uc.jobRepo.MarkFailed(ctx, job.ID, attempts, lastError, now); err != nil {
			uc.logger.Error("Dispatch[%s]: failed to mark job id=%d failed: %v", runID, job.ID, err)
			return outcomeError
		}
		uc.logger.Warn("Dispatch[%s]: job id=%d failed after %d attempts: %s", runID, job.ID, attempts, lastError)
		return outcomeFailed
	}

	nextAt := now.Add(domain.RetryBackoff(attempts, uc.opts.BackoffBase, uc.opts.BackoffMax))
	if err := uc.jobRepo.MarkRetry(ctx, job.ID, attempts, lastError, nextAt, now); err != nil {
		uc.logger.Error("Dispatch[%s]: failed to reschedule job id=%d: %v", runID, job.ID, err)
		return outcomeError
	}
	uc.logger.Info("Dispatch[%s]: job id=%d retry #%d at %s", runID, job.ID, attempts, nextAt.Format(time.RFC3339))
	return outcomeRetried
}

// release возвращает захваченную задачу в PENDING без траты попытки
func (uc *UseCase) release(ctx context.Context, runID string, job *domain.NotificationJob) {
	if err := uc.jobRepo.Release(context.WithoutCancel(ctx), job.ID, uc.timeProvider.Now()); err != nil {
		uc.logger.Error("Dispatch[%s]: failed to release job id=%d: %v", runID, job.ID, err)
	}
}
