package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"service_id",
	"provider_id",
	"start_at",
	"end_at",
	"buffer_before_minutes",
	"buffer_after_minutes",
	"party_size",
	"capacity_consumed",
	"status",
	"client_name",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

var addonColumns = []string{
	"id",
	"booking_id",
	"addon_id",
	"name",
	"extra_duration_minutes_snapshot",
	"price_amount_snapshot",
	"currency_snapshot",
}

// Repository репозиторий для работы с бронированиями и снимками их дополнений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

const (
	setLockTimeoutSQL = "SELECT set_config('lock_timeout', $1, true)"
	advisoryLockSQL   = "SELECT pg_advisory_xact_lock($1::bigint)"
)

// SetLockTimeout ограничивает ожидание блокировок до конца текущей транзакции (SET LOCAL lock_timeout)
// Нужен перед SELECT ... FOR UPDATE, чтобы ожидание строки завершалось ErrLockTimeout
func (r *Repository) SetLockTimeout(ctx context.Context, timeout time.Duration) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: SetLockTimeout - must be called inside a transaction", ErrTransaction)
	}
	return r.setLockTimeout(ctx, dbmetrics.GetExecutor(ctx, r.db), "SetLockTimeout", timeout)
}

func (r *Repository) setLockTimeout(ctx context.Context, executor DBExecutor, op string, timeout time.Duration) error {
	if _, err := executor.ExecContext(ctx, setLockTimeoutSQL, lockTimeoutSetting(timeout)); err != nil {
		return fmt.Errorf("%w: %s - set lock_timeout: %v", ErrExecQuery, op, err)
	}
	return nil
}

// lockTimeoutSetting значение для lock_timeout, неположительный timeout заменяется значением по умолчанию
func lockTimeoutSetting(timeout time.Duration) string {
	timeoutMs := timeout.Milliseconds()
	if timeoutMs <= 0 {
		timeoutMs = domain.DefaultLockTimeoutMillis
	}
	return fmt.Sprintf("%dms", timeoutMs)
}

// LockProvider берёт транзакционную advisory-блокировку на исполнителя
// Ждёт не дольше timeout (SET LOCAL lock_timeout), после чего возвращает ErrLockTimeout.
// Блокировка снимается автоматически при commit/rollback, поэтому вызывать можно только в транзакции.
// Операции над разными исполнителями друг друга не блокируют.
func (r *Repository) LockProvider(ctx context.Context, providerID int64, timeout time.Duration) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockProvider - must be called inside a transaction", ErrTransaction)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if err := r.setLockTimeout(ctx, executor, "LockProvider", timeout); err != nil {
		return err
	}

	if _, err := executor.ExecContext(ctx, advisoryLockSQL, providerID); err != nil {
		if isContention(err) {
			return fmt.Errorf("%w: provider id=%d", ErrLockTimeout, providerID)
		}
		return fmt.Errorf("%w: LockProvider - acquire lock: %v", ErrExecQuery, err)
	}

	return nil
}

// Create создает бронирование и снимки его дополнений
// Атомарность обеспечивает внешняя транзакция (txmanager), в которой вызывается метод
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"service_id",
			"provider_id",
			"start_at",
			"end_at",
			"buffer_before_minutes",
			"buffer_after_minutes",
			"party_size",
			"capacity_consumed",
			"status",
			"client_name",
			"cancellation_reason",
			"cancelled_at",
		).
		Values(
			booking.ServiceID,
			booking.ProviderID,
			booking.StartAt,
			booking.EndAt,
			booking.BufferBeforeMinutes,
			booking.BufferAfterMinutes,
			booking.PartySize,
			booking.CapacityConsumed,
			booking.Status,
			booking.ClientName,
			booking.CancellationReason,
			booking.CancelledAt,
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
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for i := range booking.Addons {
		if err := r.createAddon(ctx, executor, booking.ID, &booking.Addons[i]); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

func (r *Repository) createAddon(ctx context.Context, executor DBExecutor, bookingID int64, addon *domain.BookingAddon) error {
	query, args, err := psqlbuilder.Insert("booking_addons").
		Columns(
			"booking_id",
			"addon_id",
			"name",
			"extra_duration_minutes_snapshot",
			"price_amount_snapshot",
			"currency_snapshot",
		).
		Values(
			bookingID,
			addon.AddonID,
			addon.Name,
			addon.ExtraDurationMinutesSnapshot,
			addon.PriceAmountSnapshot,
			addon.CurrencySnapshot,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: createAddon - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&addon.ID); err != nil {
		return fmt.Errorf("%w: createAddon - execute insert: %v", ErrExecQuery, err)
	}
	addon.BookingID = bookingID

	return nil
}

// GetByID получает бронирование по ID вместе со снимками дополнений
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование с блокировкой строки (SELECT ... FOR UPDATE)
// Вне транзакции блокировка не имеет смысла, поэтому FOR UPDATE добавляется только внутри неё
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		if isContention(err) {
			return nil, fmt.Errorf("%w: GetByID - booking id=%d", ErrLockTimeout, id)
		}
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	if err := r.loadAddons(ctx, executor, []*domain.Booking{booking}); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByProviderWithFilter получает бронирования исполнителя с гибкой фильтрацией
// Период (From, To) сравнивается с интервалом с учётом буферов:
//
//	start_at - buffer_before < To  И  end_at + buffer_after > From
//
// Это то же правило пересечения полуоткрытых интервалов, что и в domain.TimeRange.Overlaps,
// поэтому соприкасающиеся интервалы не попадают в выборку.
//
// Примеры использования:
//
// 1. Занятость исполнителя в окне (только занимающие время статусы):
//
//	filter := domain.ProviderBookingsFilter{ProviderID: 5, From: &from, To: &to}
//
// 2. Проверка пересечений при переносе, без самого переносимого бронирования:
//
//	filter := domain.ProviderBookingsFilter{ProviderID: 5, From: &from, To: &to, ExcludeBookingID: &id}
//
// 3. Все бронирования исполнителя, включая отменённые:
//
//	filter := domain.ProviderBookingsFilter{ProviderID: 5, IncludeInactive: true}
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := providerFilterQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadAddons(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// providerFilterQuery строит выборку бронирований исполнителя по фильтру
func providerFilterQuery(filter domain.ProviderBookingsFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.To != nil {
		selectBuilder = selectBuilder.Where(
			squirrel.Expr("start_at - make_interval(mins => buffer_before_minutes) < ?", *filter.To))
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(
			squirrel.Expr("end_at + make_interval(mins => buffer_after_minutes) > ?", *filter.From))
	}

	if filter.ExcludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *filter.ExcludeBookingID})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	return selectBuilder.OrderBy("start_at ASC", "id ASC")
}

// UpdateSchedule переносит бронирование на новое время
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, startAt, endAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_at", startAt).
		Set("end_at", endAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateSchedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateSchedule", query, args)
}

// Update сохраняет изменяемые поля бронирования (административное редактирование)
// Сервис, исполнитель и снимки дополнений неизменяемы и не обновляются
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("start_at", booking.StartAt).
		Set("end_at", booking.EndAt).
		Set("buffer_before_minutes", booking.BufferBeforeMinutes).
		Set("buffer_after_minutes", booking.BufferAfterMinutes).
		Set("party_size", booking.PartySize).
		Set("capacity_consumed", booking.CapacityConsumed).
		Set("status", booking.Status).
		Set("client_name", booking.ClientName).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_at", booking.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Update", query, args)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// loadAddons подгружает снимки дополнений одним запросом для всех бронирований
func (r *Repository) loadAddons(ctx context.Context, executor DBExecutor, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Booking, len(bookings))
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	query, args, err := psqlbuilder.Select(addonColumns...).
		From("booking_addons").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("booking_id ASC", "id ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadAddons - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadAddons - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var addon domain.BookingAddon
		var price sql.NullFloat64

		if err := rows.Scan(
			&addon.ID,
			&addon.BookingID,
			&addon.AddonID,
			&addon.Name,
			&addon.ExtraDurationMinutesSnapshot,
			&price,
			&addon.CurrencySnapshot,
		); err != nil {
			return fmt.Errorf("%w: loadAddons - scan row: %v", ErrScanRow, err)
		}

		if price.Valid {
			p := price.Float64
			addon.PriceAmountSnapshot = &p
		}

		if b, ok := byID[addon.BookingID]; ok {
			b.Addons = append(b.Addons, addon)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadAddons - rows error: %v", ErrScanRow, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ServiceID,
		&booking.ProviderID,
		&booking.StartAt,
		&booking.EndAt,
		&booking.BufferBeforeMinutes,
		&booking.BufferAfterMinutes,
		&booking.PartySize,
		&booking.CapacityConsumed,
		&booking.Status,
		&booking.ClientName,
		&booking.CancellationReason,
		&booking.CancelledAt,
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
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
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
