package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/psqlbuilder"
)

var jobColumns = []string{
	"id",
	"booking_id",
	"barbershop_id",
	"type",
	"status",
	"scheduled_at",
	"attempts",
	"last_error",
	"sent_at",
	"canceled_at",
	"cancel_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий задач уведомлений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория задач уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// InsertSkipDuplicates создает задачи бронирования, уже существующие пары (booking_id, type) пропускаются
// Возвращает количество реально созданных задач
func (r *Repository) InsertSkipDuplicates(ctx context.Context, bookingID, barbershopID int64, jobs []domain.PlannedJob, now time.Time) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("notification_jobs").
		Columns("booking_id", "barbershop_id", "type", "status", "scheduled_at", "attempts", "created_at", "updated_at")

	for _, job := range jobs {
		insertBuilder = insertBuilder.Values(bookingID, barbershopID, job.Type, domain.JobStatusPending, job.ScheduledAt, 0, now, now)
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (booking_id, type) DO NOTHING").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: InsertSkipDuplicates - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: InsertSkipDuplicates - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: InsertSkipDuplicates - get rows affected: %v", ErrExecQuery, err)
	}

	return int(rowsAffected), nil
}

// CancelPendingByBooking отменяет все ожидающие задачи бронирования
func (r *Repository) CancelPendingByBooking(ctx context.Context, bookingID int64, reason string, now time.Time) (int64, error) {
	return r.cancelPending(ctx, "CancelPendingByBooking", squirrel.Eq{"booking_id": bookingID}, reason, now)
}

// CancelFuturePendingByBarbershop отменяет ожидающие задачи тенанта, запланированные после now
func (r *Repository) CancelFuturePendingByBarbershop(ctx context.Context, barbershopID int64, reason string, now time.Time) (int64, error) {
	return r.cancelPending(ctx, "CancelFuturePendingByBarbershop", squirrel.And{
		squirrel.Eq{"barbershop_id": barbershopID},
		squirrel.Gt{"scheduled_at": now},
	}, reason, now)
}

func (r *Repository) cancelPending(ctx context.Context, op string, where squirrel.Sqlizer, reason string, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusCanceled).
		Set("canceled_at", now).
		Set("cancel_reason", reason).
		Set("updated_at", now).
		Where(where).
		Where(squirrel.Eq{"status": domain.JobStatusPending}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	return rowsAffected, nil
}

// ListDue ожидающие задачи, время которых наступило, упорядоченные по (scheduled_at, id)
// cursor - последняя задача предыдущей страницы, nil для первой страницы
func (r *Repository) ListDue(ctx context.Context, now time.Time, cursor *domain.JobCursor, limit int) ([]*domain.NotificationJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(jobColumns...).
		From("notification_jobs").
		Where(squirrel.Eq{"status": domain.JobStatusPending}).
		Where(squirrel.LtOrEq{"scheduled_at": now})

	if cursor != nil {
		selectBuilder = selectBuilder.Where(squirrel.Expr("(scheduled_at, id) > (?, ?)", cursor.ScheduledAt, cursor.ID))
	}

	query, args, err := selectBuilder.
		OrderBy("scheduled_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	jobs := make([]*domain.NotificationJob, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListDue - scan row: %v", ErrScanRow, err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDue - rows error: %v", ErrScanRow, err)
	}

	return jobs, nil
}

// ListByBooking все задачи бронирования
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.NotificationJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(jobColumns...).
		From("notification_jobs").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("scheduled_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	jobs := make([]*domain.NotificationJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}

	return jobs, nil
}

// Claim захватывает задачу PENDING -> SENDING и возвращает захваченную строку
// nil - задачу уже захватил другой диспетчер, отменили или перенесли
func (r *Repository) Claim(ctx context.Context, id int64, now time.Time) (*domain.NotificationJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusSending).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": domain.JobStatusPending}).
		Where(squirrel.LtOrEq{"scheduled_at": now}).
		Suffix("RETURNING " + strings.Join(jobColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	job, err := scanJob(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: Claim - execute update: %v", ErrExecQuery, err)
	}

	return job, nil
}

// MarkSent SENDING -> SENT
func (r *Repository) MarkSent(ctx context.Context, id int64, now time.Time) error {
	return r.finishClaimed(ctx, "MarkSent", id, psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusSent).
		Set("sent_at", now).
		Set("updated_at", now))
}

// MarkCanceled SENDING -> CANCELED с причиной
func (r *Repository) MarkCanceled(ctx context.Context, id int64, reason string, now time.Time) error {
	return r.finishClaimed(ctx, "MarkCanceled", id, psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusCanceled).
		Set("canceled_at", now).
		Set("cancel_reason", reason).
		Set("updated_at", now))
}

// MarkRetry SENDING -> PENDING с новым временем попытки
func (r *Repository) MarkRetry(ctx context.Context, id int64, attempts int, lastError string, nextAt, now time.Time) error {
	return r.finishClaimed(ctx, "MarkRetry", id, psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusPending).
		Set("attempts", attempts).
		Set("last_error", lastError).
		Set("scheduled_at", nextAt).
		Set("updated_at", now))
}

// MarkFailed SENDING -> FAILED, попытки исчерпаны
func (r *Repository) MarkFailed(ctx context.Context, id int64, attempts int, lastError string, now time.Time) error {
	return r.finishClaimed(ctx, "MarkFailed", id, psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusFailed).
		Set("attempts", attempts).
		Set("last_error", lastError).
		Set("updated_at", now))
}

// Release возвращает захваченную задачу в PENDING без расхода попытки
func (r *Repository) Release(ctx context.Context, id int64, now time.Time) error {
	return r.finishClaimed(ctx, "Release", id, psqlbuilder.Update("notification_jobs").
		Set("status", domain.JobStatusPending).
		Set("updated_at", now))
}

func (r *Repository) finishClaimed(ctx context.Context, op string, id int64, update squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.
		Where(squirrel.Eq{"id": id, "status": domain.JobStatusSending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrJobNotClaimed
	}

	return nil
}

// GetNotificationContext собирает данные бронирования, клиента и тенанта для сообщения
func (r *Repository) GetNotificationContext(ctx context.Context, bookingID int64) (*domain.NotificationContext, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"b.id",
		"b.barbershop_id",
		"b.barber_id",
		"b.service_id",
		"b.user_id",
		"b.start_at",
		"b.end_at",
		"b.payment_method",
		"b.payment_status",
		"b.cancelled_at",
		"u.name",
		"COALESCE(u.phone, '')",
		"s.name",
		"s.plan",
		"s.messaging_enabled",
		"s.confirm_enabled",
		"s.reminder_24h_enabled",
		"s.reminder_1h_enabled",
		"COALESCE(br.name, '')",
		"sv.name",
	).
		From("bookings b").
		Join("users u ON u.id = b.user_id").
		Join("barbershops s ON s.id = b.barbershop_id").
		Join("services sv ON sv.id = b.service_id").
		LeftJoin("barbers br ON br.id = b.barber_id").
		Where(squirrel.Eq{"b.id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetNotificationContext - build select query: %v", ErrBuildQuery, err)
	}

	booking := &domain.Booking{}
	nc := &domain.NotificationContext{Booking: booking}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.BarbershopID,
		&booking.BarberID,
		&booking.ServiceID,
		&booking.UserID,
		&booking.StartAt,
		&booking.EndAt,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&booking.CancelledAt,
		&nc.CustomerName,
		&nc.CustomerPhone,
		&nc.BarbershopName,
		&nc.Messaging.Plan,
		&nc.Messaging.Enabled,
		&nc.Messaging.ConfirmEnabled,
		&nc.Messaging.Reminder24hEnabled,
		&nc.Messaging.Reminder1hEnabled,
		&nc.BarberName,
		&nc.ServiceName,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetNotificationContext - scan row: %v", ErrScanRow, err)
	}

	return nc, nil
}

func scanJob(row rowScanner) (*domain.NotificationJob, error) {
	var job domain.NotificationJob

	err := row.Scan(
		&job.ID,
		&job.BookingID,
		&job.BarbershopID,
		&job.Type,
		&job.Status,
		&job.ScheduledAt,
		&job.Attempts,
		&job.LastError,
		&job.SentAt,
		&job.CanceledAt,
		&job.CancelReason,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &job, nil
}
