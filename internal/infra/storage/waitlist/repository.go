package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/pgerrors"
	"github.com/m04kA/SMC-BarberBooking/pkg/psqlbuilder"
)

const constraintActiveEntry = "waitlist_entries_active_uq"

var entryColumns = []string{
	"id",
	"barbershop_id",
	"barber_id",
	"service_id",
	"user_id",
	"date_day",
	"status",
	"fulfilled_booking_id",
	"fulfilled_at",
	"expired_at",
	"fulfilled_seen_at",
	"created_at",
}

// Repository репозиторий листа ожидания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет активную запись в лист ожидания
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns("barbershop_id", "barber_id", "service_id", "user_id", "date_day", "status").
		Values(entry.BarbershopID, entry.BarberID, entry.ServiceID, entry.UserID, entry.DateDay, domain.WaitlistStatusActive).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		if pgerrors.IsUniqueViolation(err, constraintActiveEntry) {
			return nil, ErrAlreadyOnWaitlist
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.Status = domain.WaitlistStatusActive
	return entry, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanEntry(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// GetOldestActive самая ранняя активная запись по ключу, порядок FIFO (created_at, id)
// Внутри транзакции запись блокируется, строки, заблокированные другими транзакциями, пропускаются
func (r *Repository) GetOldestActive(ctx context.Context, key domain.WaitlistKey) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{
			"barbershop_id": key.BarbershopID,
			"barber_id":     key.BarberID,
			"service_id":    key.ServiceID,
			"date_day":      key.DateDay,
			"status":        domain.WaitlistStatusActive,
		}).
		OrderBy("created_at ASC", "id ASC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOldestActive - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := scanEntry(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOldestActive - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// Expire переводит запись ACTIVE -> EXPIRED
// false - запись уже не активна
func (r *Repository) Expire(ctx context.Context, id int64, now time.Time) (bool, error) {
	return r.transition(ctx, "Expire", id, psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistStatusExpired).
		Set("expired_at", now))
}

// Claim переводит запись ACTIVE -> FULFILLED
// false - запись уже забрал другой процесс
func (r *Repository) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	return r.transition(ctx, "Claim", id, psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistStatusFulfilled).
		Set("fulfilled_at", now))
}

func (r *Repository) transition(ctx context.Context, op string, id int64, update squirrel.UpdateBuilder) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistStatusActive}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	return rowsAffected == 1, nil
}

// LinkBooking связывает выполненную запись с созданным бронированием
func (r *Repository) LinkBooking(ctx context.Context, id int64, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("fulfilled_booking_id", bookingID).
		Where(squirrel.Eq{"id": id, "status": domain.WaitlistStatusFulfilled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LinkBooking - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: LinkBooking - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: LinkBooking - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// ListByUser записи пользователя, новые первыми
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByUser - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.WaitlistEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByUser - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByUser - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}

// MarkSeen отмечает, что пользователь увидел результат выполнения записи
func (r *Repository) MarkSeen(ctx context.Context, id int64, userID int64, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("fulfilled_seen_at", squirrel.Expr("COALESCE(fulfilled_seen_at, ?)", now)).
		Where(squirrel.Eq{"id": id, "user_id": userID, "status": domain.WaitlistStatusFulfilled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkSeen - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkSeen - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkSeen - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func scanEntry(row rowScanner) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry

	err := row.Scan(
		&entry.ID,
		&entry.BarbershopID,
		&entry.BarberID,
		&entry.ServiceID,
		&entry.UserID,
		&entry.DateDay,
		&entry.Status,
		&entry.FulfilledBookingID,
		&entry.FulfilledAt,
		&entry.ExpiredAt,
		&entry.FulfilledSeenAt,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}
