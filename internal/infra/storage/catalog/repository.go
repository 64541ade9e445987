package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий каталога: услуги, исполнители и дополнения
// Данные каталога принадлежат внешней системе, движок их только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу по ID
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"duration_minutes",
		"allow_multiple_clients_per_slot",
		"requires_approval",
		"cancellation_allowed",
		"cancellation_notice_minutes",
		"reschedule_allowed",
		"reschedule_notice_minutes",
		"pricing_type",
		"price_amount",
		"currency",
	).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	var tenantID sql.NullInt64
	var price sql.NullFloat64

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&tenantID,
		&service.Name,
		&service.DurationMinutes,
		&service.AllowMultipleClientsPerSlot,
		&service.RequiresApproval,
		&service.CancellationAllowed,
		&service.CancellationNoticeMinutes,
		&service.RescheduleAllowed,
		&service.RescheduleNoticeMinutes,
		&service.PricingType,
		&price,
		&service.Currency,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	service.TenantID = nullInt64Ptr(tenantID)
	service.PriceAmount = nullFloat64Ptr(price)

	return &service, nil
}

// GetProvider получает исполнителя по ID
func (r *Repository) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "tenant_id", "name").
		From("providers").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - build select query: %v", ErrBuildQuery, err)
	}

	var provider domain.Provider
	var tenantID sql.NullInt64

	err = executor.QueryRowContext(ctx, query, args...).Scan(&provider.ID, &tenantID, &provider.Name)
	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProvider - scan provider: %v", ErrScanRow, err)
	}

	provider.TenantID = nullInt64Ptr(tenantID)

	return &provider, nil
}

// addonsQuery выборка дополнений, доступных услуге
func addonsQuery(serviceID int64, ids []int64) squirrel.SelectBuilder {
	return psqlbuilder.Select("id", "name", "extra_duration_minutes", "price_amount", "currency").
		From("service_addons").
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Or{
			squirrel.Eq{"service_id": nil},
			squirrel.Eq{"service_id": serviceID},
		})
}

// GetAddonsByIDs получает дополнения услуги в порядке переданных ID
// Подходят дополнения самой услуги и общие (service_id IS NULL).
// Если хотя бы один ID не найден, возвращает ErrAddonNotFound
func (r *Repository) GetAddonsByIDs(ctx context.Context, serviceID int64, ids []int64) ([]domain.ServiceAddon, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := addonsQuery(serviceID, ids).ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAddonsByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAddonsByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	found := make(map[int64]domain.ServiceAddon, len(ids))
	for rows.Next() {
		var addon domain.ServiceAddon
		var price sql.NullFloat64

		if err := rows.Scan(&addon.ID, &addon.Name, &addon.ExtraDurationMinutes, &price, &addon.Currency); err != nil {
			return nil, fmt.Errorf("%w: GetAddonsByIDs - scan row: %v", ErrScanRow, err)
		}
		addon.PriceAmount = nullFloat64Ptr(price)
		found[addon.ID] = addon
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAddonsByIDs - rows error: %v", ErrScanRow, err)
	}

	return orderAddons(ids, found)
}

// orderAddons раскладывает найденные дополнения в порядке запроса
// Повторяющийся ID даёт повторяющийся снимок
func orderAddons(ids []int64, found map[int64]domain.ServiceAddon) ([]domain.ServiceAddon, error) {
	addons := make([]domain.ServiceAddon, 0, len(ids))
	for _, id := range ids {
		addon, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: id=%d", ErrAddonNotFound, id)
		}
		addons = append(addons, addon)
	}
	return addons, nil
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
