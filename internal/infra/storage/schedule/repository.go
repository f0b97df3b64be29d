package schedule

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

const (
	templatesTable = "availability_templates"
	daysOffTable   = "provider_days_off"
)

var templateColumns = []string{
	"id",
	"provider_id",
	"day_of_week",
	"start_time",
	"end_time",
	"break_start",
	"break_end",
	"slot_duration_minutes",
	"updated_at",
}

// Repository хранилище недельных шаблонов и выходных мастеров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpsertTemplate создает или заменяет шаблон мастера на день недели.
// На пару (provider_id, day_of_week) хранится не более одного шаблона
func (r *Repository) UpsertTemplate(ctx context.Context, tpl *domain.AvailabilityTemplate) (*domain.AvailabilityTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(templatesTable).
		Columns(
			"provider_id",
			"day_of_week",
			"start_time",
			"end_time",
			"break_start",
			"break_end",
			"slot_duration_minutes",
		).
		Values(
			tpl.ProviderID,
			int(tpl.DayOfWeek),
			tpl.StartTime,
			tpl.EndTime,
			tpl.BreakStart,
			tpl.BreakEnd,
			tpl.SlotDurationMinutes,
		).
		Suffix(`ON CONFLICT (provider_id, day_of_week) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_start = EXCLUDED.break_start,
			break_end = EXCLUDED.break_end,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			updated_at = NOW()
		RETURNING id, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertTemplate - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&tpl.ID, &tpl.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertTemplate - execute insert: %v", ErrExecQuery, err)
	}

	return tpl, nil
}

// ListTemplates возвращает все шаблоны мастера, отсортированные по дню недели
func (r *Repository) ListTemplates(ctx context.Context, providerID int64) ([]*domain.AvailabilityTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(templateColumns...).
		From(templatesTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.AvailabilityTemplate, 0, 7)
	for rows.Next() {
		var (
			tpl       domain.AvailabilityTemplate
			dayOfWeek int
		)
		if err := rows.Scan(
			&tpl.ID,
			&tpl.ProviderID,
			&dayOfWeek,
			&tpl.StartTime,
			&tpl.EndTime,
			&tpl.BreakStart,
			&tpl.BreakEnd,
			&tpl.SlotDurationMinutes,
			&tpl.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: ListTemplates - scan template: %v", ErrScanRow, err)
		}
		tpl.DayOfWeek = time.Weekday(dayOfWeek)
		templates = append(templates, &tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - rows error: %w", ErrScanRow, err)
	}

	return templates, nil
}

// DeleteTemplate удаляет шаблон мастера на день недели
func (r *Repository) DeleteTemplate(ctx context.Context, providerID int64, day time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(templatesTable).
		Where(squirrel.Eq{"provider_id": providerID, "day_of_week": int(day)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteTemplate - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteTemplate - execute delete: %v", ErrExecQuery, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// AddDayOff отмечает дату выходным. Повторная отметка ничего не меняет
func (r *Repository) AddDayOff(ctx context.Context, dayOff *domain.DayOff) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(daysOffTable).
		Columns("provider_id", "day_off", "reason").
		Values(dayOff.ProviderID, domain.TruncateDate(dayOff.Date), dayOff.Reason).
		Suffix("ON CONFLICT (provider_id, day_off) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddDayOff - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddDayOff - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// ListDaysOff возвращает выходные мастера в диапазоне дат включительно
func (r *Repository) ListDaysOff(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.DayOff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("provider_id", "day_off", "reason").
		From(daysOffTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"day_off": domain.TruncateDate(from)}).
		Where(squirrel.LtOrEq{"day_off": domain.TruncateDate(to)}).
		OrderBy("day_off ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	daysOff := make([]*domain.DayOff, 0)
	for rows.Next() {
		var (
			d      domain.DayOff
			reason sql.NullString
		)
		if err := rows.Scan(&d.ProviderID, &d.Date, &reason); err != nil {
			return nil, fmt.Errorf("%w: ListDaysOff - scan day off: %v", ErrScanRow, err)
		}
		if reason.Valid {
			d.Reason = &reason.String
		}
		daysOff = append(daysOff, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - rows error: %w", ErrScanRow, err)
	}

	return daysOff, nil
}

// DeleteDayOff снимает отметку выходного
func (r *Repository) DeleteDayOff(ctx context.Context, providerID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(daysOffTable).
		Where(squirrel.Eq{"provider_id": providerID, "day_off": domain.TruncateDate(date)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteDayOff - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteDayOff - execute delete: %v", ErrExecQuery, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDayOffNotFound
	}
	return nil
}
