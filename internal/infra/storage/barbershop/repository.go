package barbershop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberBooking/internal/domain"
	"github.com/m04kA/SMC-BarberBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberBooking/pkg/psqlbuilder"
)

// Repository репозиторий настроек барбершопа: часы работы, услуги, мастера, тариф
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория барбершопов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает барбершоп с настройками сообщений
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Barbershop, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"owner_id",
		"plan",
		"messaging_enabled",
		"confirm_enabled",
		"reminder_24h_enabled",
		"reminder_1h_enabled",
	).
		From("barbershops").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var shop domain.Barbershop
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&shop.ID,
		&shop.Name,
		&shop.OwnerID,
		&shop.Messaging.Plan,
		&shop.Messaging.Enabled,
		&shop.Messaging.ConfirmEnabled,
		&shop.Messaging.Reminder24hEnabled,
		&shop.Messaging.Reminder1hEnabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarbershopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan barbershop: %v", ErrScanRow, err)
	}

	return &shop, nil
}

// GetWeeklyHours часы работы по дням недели
// День без строки в opening_hours считается выходным
func (r *Repository) GetWeeklyHours(ctx context.Context, barbershopID int64) (domain.WeeklyHours, error) {
	var hours domain.WeeklyHours
	for i := range hours {
		hours[i] = domain.DayHours{Closed: true}
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "open_minute", "close_minute", "closed").
		From("opening_hours").
		Where(squirrel.Eq{"barbershop_id": barbershopID}).
		ToSql()

	if err != nil {
		return hours, fmt.Errorf("%w: GetWeeklyHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return hours, fmt.Errorf("%w: GetWeeklyHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int
		var day domain.DayHours
		if err := rows.Scan(&weekday, &day.OpenMinute, &day.CloseMinute, &day.Closed); err != nil {
			return hours, fmt.Errorf("%w: GetWeeklyHours - scan row: %v", ErrScanRow, err)
		}
		if weekday < 0 || weekday >= len(hours) {
			continue
		}
		hours[weekday] = day
	}

	if err := rows.Err(); err != nil {
		return hours, fmt.Errorf("%w: GetWeeklyHours - rows error: %v", ErrScanRow, err)
	}

	return hours, nil
}

// ReplaceWeeklyHours перезаписывает часы работы барбершопа
// Вызывать внутри транзакции
func (r *Repository) ReplaceWeeklyHours(ctx context.Context, barbershopID int64, hours domain.WeeklyHours) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("opening_hours").
		Where(squirrel.Eq{"barbershop_id": barbershopID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - execute delete: %v", ErrExecQuery, err)
	}

	insertBuilder := psqlbuilder.Insert("opening_hours").
		Columns("barbershop_id", "weekday", "open_minute", "close_minute", "closed")
	for weekday, day := range hours {
		insertBuilder = insertBuilder.Values(barbershopID, weekday, day.OpenMinute, day.CloseMinute, day.Closed)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklyHours - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetServices активные услуги барбершопа по списку ID
// Порядок результата не гарантирован, отсутствующие ID просто не попадают в ответ
func (r *Repository) GetServices(ctx context.Context, barbershopID int64, ids []int64) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "barbershop_id", "name", "duration_minutes", "price_in_cents", "active").
		From("services").
		Where(squirrel.Eq{"barbershop_id": barbershopID, "id": ids, "active": true}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0, len(ids))
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetServices - scan row: %v", ErrScanRow, err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServices - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// GetService получает услугу по ID, в том числе неактивную
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "barbershop_id", "name", "duration_minutes", "price_in_cents", "active").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	service, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	return service, nil
}

// BarberBelongsTo проверяет, что активный мастер работает в барбершопе
func (r *Repository) BarberBelongsTo(ctx context.Context, barberID, barbershopID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("barbers").
		Where(squirrel.Eq{"id": barberID, "barbershop_id": barbershopID, "active": true}).
		Suffix(")").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: BarberBelongsTo - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: BarberBelongsTo - scan row: %v", ErrScanRow, err)
	}

	return exists, nil
}

// UpdateMessaging сохраняет тариф и флаги сообщений барбершопа
func (r *Repository) UpdateMessaging(ctx context.Context, barbershopID int64, settings domain.MessagingSettings, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("barbershops").
		Set("plan", settings.Plan).
		Set("messaging_enabled", settings.Enabled).
		Set("confirm_enabled", settings.ConfirmEnabled).
		Set("reminder_24h_enabled", settings.Reminder24hEnabled).
		Set("reminder_1h_enabled", settings.Reminder1hEnabled).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": barbershopID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateMessaging - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateMessaging - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateMessaging - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBarbershopNotFound
	}

	return nil
}

// ListActiveIDs ID всех активных барбершопов, для плановых сверок
func (r *Repository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("barbershops").
		Where(squirrel.Eq{"active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListActiveIDs - scan row: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

func scanService(row rowScanner) (*domain.Service, error) {
	var service domain.Service

	err := row.Scan(
		&service.ID,
		&service.BarbershopID,
		&service.Name,
		&service.DurationMinutes,
		&service.PriceInCents,
		&service.Active,
	)
	if err != nil {
		return nil, err
	}

	return &service, nil
}
