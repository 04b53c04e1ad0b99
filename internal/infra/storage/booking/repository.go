package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/pgerrors"
	"github.com/m04kA/SMC-BarberBooking/pkg/psqlbuilder"
)

// Имена ограничений, гарантирующих один неотменённый слот на мастера
const (
	constraintBarberSlot    = "bookings_barber_slot_uq"
	constraintBarberOverlap = "bookings_barber_no_overlap"
	constraintSessionID     = "bookings_stripe_session_id_key"
)

var bookingColumns = []string{
	"id",
	"barbershop_id",
	"barber_id",
	"service_id",
	"COALESCE((SELECT array_agg(bs.service_id ORDER BY bs.position) FROM booking_services bs WHERE bs.booking_id = bookings.id), '{}') AS service_ids",
	"user_id",
	"date",
	"start_at",
	"end_at",
	"total_duration_minutes",
	"total_price_in_cents",
	"payment_method",
	"payment_status",
	"stripe_session_id",
	"stripe_charge_id",
	"payment_confirmed_at",
	"cancelled_at",
	"cancellation_reason",
	"source",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование вместе со списком услуг
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// Занятость слота проверяется ограничениями БД (уникальный индекс по (barber_id, start_at)
// и EXCLUDE по пересечению интервалов), нарушение возвращается как ErrSlotTaken.
// Предварительная проверка доступности в usecase носит рекомендательный характер.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"barbershop_id",
			"barber_id",
			"service_id",
			"user_id",
			"date",
			"start_at",
			"end_at",
			"total_duration_minutes",
			"total_price_in_cents",
			"payment_method",
			"payment_status",
			"stripe_session_id",
			"stripe_charge_id",
			"payment_confirmed_at",
			"source",
		).
		Values(
			booking.BarbershopID,
			booking.BarberID,
			booking.ServiceID,
			booking.UserID,
			booking.Date,
			booking.StartAt,
			booking.EndAt,
			booking.TotalDurationMinutes,
			booking.TotalPriceInCents,
			booking.PaymentMethod,
			booking.PaymentStatus,
			booking.StripeSessionID,
			booking.StripeChargeID,
			booking.PaymentConfirmedAt,
			booking.Source,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	if len(booking.ServiceIDs) == 0 {
		booking.ServiceIDs = []int64{booking.ServiceID}
	}

	servicesInsert := psqlbuilder.Insert("booking_services").
		Columns("booking_id", "service_id", "position")
	for i, serviceID := range booking.ServiceIDs {
		servicesInsert = servicesInsert.Values(booking.ID, serviceID, i)
	}

	query, args, err = servicesInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build booking_services insert: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert booking_services: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetBySessionID получает бронирование по ID checkout-сессии платёжного провайдера
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Booking, error) {
	return r.getOne(ctx, "GetBySessionID", squirrel.Eq{"stripe_session_id": sessionID})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}

	return booking, nil
}

// GetByUserID получает историю бронирований пользователя, сначала ближайшие по времени начала
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("start_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListActiveByBarberAndRange неотменённые бронирования мастера, пересекающие [from, to)
func (r *Repository) ListActiveByBarberAndRange(ctx context.Context, barberID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"barber_id": barberID}).
		Where(squirrel.Eq{"cancelled_at": nil}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByBarberAndRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByBarberAndRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByBarbershopAndRange все бронирования барбершопа с началом в [from, to), включая отменённые
func (r *Repository) ListByBarbershopAndRange(ctx context.Context, barbershopID int64, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"barbershop_id": barbershopID}).
		Where(squirrel.GtOrEq{"start_at": from}).
		Where(squirrel.Lt{"start_at": to}).
		OrderBy("start_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBarbershopAndRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBarbershopAndRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListPendingStripe неподтверждённые STRIPE бронирования для сверки, старые первыми
func (r *Repository) ListPendingStripe(ctx context.Context, filter domain.PendingPaymentFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"payment_method": domain.PaymentMethodStripe,
			"payment_status": domain.PaymentStatusPending,
		}).
		Where(squirrel.NotEq{"stripe_session_id": nil}).
		Where(squirrel.GtOrEq{"created_at": filter.CreatedAfter}).
		Where(squirrel.Lt{"created_at": filter.CreatedBefore}).
		OrderBy("created_at ASC", "id ASC")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.BarbershopID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barbershop_id": *filter.BarbershopID})
	}
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingStripe - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingStripe - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// SetStripeSession привязывает checkout-сессию к бронированию
func (r *Repository) SetStripeSession(ctx context.Context, id int64, sessionID string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("stripe_session_id", sessionID).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetStripeSession - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if pgerrors.IsUniqueViolation(err, constraintSessionID) {
			return ErrSessionAlreadyLinked
		}
		return fmt.Errorf("%w: SetStripeSession - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "SetStripeSession", ErrBookingNotFound)
}

// UpdatePayment сохраняет платёжное состояние бронирования, если текущий статус всё ещё expected
// ErrStatusChanged - статус успел измениться, ErrSlotTaken - восстановление отменённого
// бронирования упёрлось в занятый слот
func (r *Repository) UpdatePayment(ctx context.Context, booking *domain.Booking, expected domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", booking.PaymentStatus).
		Set("stripe_charge_id", booking.StripeChargeID).
		Set("payment_confirmed_at", booking.PaymentConfirmedAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("cancellation_reason", booking.CancellationReason).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID, "payment_status": expected}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePayment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: UpdatePayment - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "UpdatePayment", ErrStatusChanged)
}

// Cancel мягко отменяет бронирование, если оно ещё не отменено
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("cancelled_at", now).
		Set("cancellation_reason", reason).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "cancelled_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "Cancel", ErrStatusChanged)
}

// MarkCheckoutFailed помечает STRIPE бронирование, для которого не удалось создать checkout-сессию
func (r *Repository) MarkCheckoutFailed(ctx context.Context, id int64, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_status", domain.PaymentStatusFailed).
		Set("cancelled_at", now).
		Set("cancellation_reason", domain.CancelReasonCheckoutFailed).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "payment_status": domain.PaymentStatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkCheckoutFailed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkCheckoutFailed - execute update: %v", ErrExecQuery, err)
	}

	return requireAffected(result, "MarkCheckoutFailed", ErrStatusChanged)
}

func requireAffected(result sql.Result, op string, errNone error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return errNone
	}
	return nil
}

func isSlotConflict(err error) bool {
	return pgerrors.IsUniqueViolation(err, constraintBarberSlot) ||
		pgerrors.IsExclusionViolation(err, constraintBarberOverlap) ||
		pgerrors.IsSerializationFailure(err)
}

// scanBooking сканирует одну строку в бронирование
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.BarbershopID,
		&booking.BarberID,
		&booking.ServiceID,
		pq.Array(&booking.ServiceIDs),
		&booking.UserID,
		&booking.Date,
		&booking.StartAt,
		&booking.EndAt,
		&booking.TotalDurationMinutes,
		&booking.TotalPriceInCents,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&booking.StripeSessionID,
		&booking.StripeChargeID,
		&booking.PaymentConfirmedAt,
		&booking.CancelledAt,
		&booking.CancellationReason,
		&booking.Source,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
