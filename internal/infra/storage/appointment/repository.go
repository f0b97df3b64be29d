package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const (
	tableName = "appointments"

	// SQLSTATE нарушений ограничений
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"

	timestampLayout = "2006-01-02 15:04:05"
)

var columns = []string{
	"id",
	"provider_id",
	"client_id",
	"service_id",
	"appointment_date",
	"start_time",
	"end_time",
	"status",
	"service_name",
	"service_price",
	"comment",
	"cancellation_reason",
	"cancelled_by",
	"rating",
	"review",
	"reminder_sent",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей (реестр бронирований)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет запись.
// Пересечение с активной записью мастера отсекается exclusion constraint на уровне БД,
// поэтому вставка является единственной условной записью: при гонке ровно одна транзакция
// проходит, остальные получают ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"provider_id",
			"client_id",
			"service_id",
			"appointment_date",
			"start_time",
			"end_time",
			"status",
			"service_name",
			"service_price",
			"comment",
		).
		Values(
			appt.ProviderID,
			appt.ClientID,
			appt.ServiceID,
			appt.AppointmentDate,
			appt.StartTime,
			appt.EndTime,
			appt.Status,
			appt.ServiceName,
			appt.ServicePrice,
			appt.Comment,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return appt, nil
}

// GetByID получает запись по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// ListOccupyingByProviderAndDate возвращает неотмененные записи мастера на дату
// (включая завершенные), отсортированные по времени начала
func (r *Repository) ListOccupyingByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.List(ctx, domain.AppointmentsFilter{
		ProviderID: &providerID,
		StartDate:  &date,
		EndDate:    &date,
		Statuses:   domain.OccupyingStatuses,
	})
}

// List возвращает записи по фильтру.
// Без Status, Statuses и IncludeInactive возвращаются только активные (pending, confirmed)
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).From(tableName)

	if filter.ProviderID != nil {
		builder = builder.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if filter.ClientID != nil {
		builder = builder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"appointment_date": domain.TruncateDate(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"appointment_date": domain.TruncateDate(*filter.EndDate)})
	}

	switch {
	case filter.Status != nil:
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	case len(filter.Statuses) > 0:
		builder = builder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	case !filter.IncludeInactive:
		builder = builder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	query, args, err := builder.OrderBy("appointment_date ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// StatusUpdate параметры условного перехода статуса
type StatusUpdate struct {
	ID                 int64
	From               domain.AppointmentStatus
	To                 domain.AppointmentStatus
	CancellationReason *string
	CancelledBy        *domain.Role
}

// UpdateStatus переводит запись в новый статус, только если текущий статус равен From.
// Если строка не обновлена, возвращает ErrStatusChanged
func (r *Repository) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(tableName).
		Set("status", string(upd.To)).
		Set("updated_at", squirrel.Expr("NOW()"))

	if upd.To == domain.StatusCancelled {
		builder = builder.
			Set("cancellation_reason", upd.CancellationReason).
			Set("cancelled_by", rolePtrString(upd.CancelledBy))
	}

	query, args, err := builder.
		Where(squirrel.Eq{"id": upd.ID, "status": string(upd.From)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// SetReview сохраняет оценку и отзыв, только для завершенной записи без отзыва
func (r *Repository) SetReview(ctx context.Context, id int64, rating int, review *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("rating", rating).
		Set("review", review).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusCompleted), "rating": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetReview - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetReview - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetReview - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrReviewNotAllowed
	}

	return nil
}

// ListDueReminders возвращает подтвержденные записи без напоминания,
// начало которых попадает в [from, to]. Время сравнивается как локальное время мастера
func (r *Repository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"status": string(domain.StatusConfirmed), "reminder_sent": false}).
		Where(squirrel.Expr("appointment_date + start_time >= ?::timestamp", from.Format(timestampLayout))).
		Where(squirrel.Expr("appointment_date + start_time <= ?::timestamp", to.Format(timestampLayout))).
		OrderBy("appointment_date ASC", "start_time ASC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueReminders - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// MarkReminderSent захватывает напоминание: флаг ставится, только если запись все еще
// подтверждена и напоминание по ней не отправлялось. Возвращает false, если строка не обновлена
func (r *Repository) MarkReminderSent(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("reminder_sent", true).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusConfirmed), "reminder_sent": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkReminderSent - rows affected: %v", ErrExecQuery, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt      domain.Appointment
		rating    sql.NullInt32
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.ProviderID,
		&appt.ClientID,
		&appt.ServiceID,
		&appt.AppointmentDate,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.ServiceName,
		&appt.ServicePrice,
		&appt.Comment,
		&appt.CancellationReason,
		&appt.CancelledBy,
		&rating,
		&appt.Review,
		&appt.ReminderSent,
		&appt.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		v := int(rating.Int32)
		appt.Rating = &v
	}
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	result := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan appointment: %v", ErrScanRow, err)
		}
		result = append(result, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %w", ErrScanRow, err)
	}
	return result, nil
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgExclusionViolation || pqErr.Code == pgUniqueViolation
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func rolePtrString(r *domain.Role) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}
