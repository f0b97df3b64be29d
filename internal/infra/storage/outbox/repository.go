package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const tableName = "notification_outbox"

// Message строка outbox, ожидающая отправки брокеру
type Message struct {
	ID          int64
	EventID     uuid.UUID
	RecipientID int64
	Kind        domain.NotificationKind
	Payload     []byte
	Attempts    int
	CreatedAt   time.Time
}

// Repository transactional outbox уведомлений.
// Send пишет в ту же транзакцию, что и бизнес-изменение, поэтому уведомление
// появляется тогда и только тогда, когда изменение зафиксировано
type Repository struct {
	db    dbmetrics.DBExecutor
	newID func() uuid.UUID
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db, newID: uuid.New}
}

// Send ставит уведомление в очередь на отправку
func (r *Repository) Send(ctx context.Context, n domain.Notification) error {
	if n.RecipientID <= 0 || strings.TrimSpace(n.Message) == "" {
		return ErrInvalidNotification
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: Send - marshal payload: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("event_id", "recipient_id", "recipient_role", "kind", "payload").
		Values(r.newID().String(), n.RecipientID, string(n.RecipientRole), string(n.Kind), payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Send - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Send - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}

// FetchPending выбирает неотправленные сообщения по порядку создания.
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько relay не отправили одно сообщение дважды
func (r *Repository) FetchPending(ctx context.Context, limit int) ([]*Message, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id", "event_id", "recipient_id", "kind", "payload", "attempts", "created_at").
		From(tableName).
		Where(squirrel.Eq{"delivered_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchPending - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	messages := make([]*Message, 0, limit)
	for rows.Next() {
		var (
			m       Message
			eventID string
		)
		if err := rows.Scan(&m.ID, &eventID, &m.RecipientID, &m.Kind, &m.Payload, &m.Attempts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - scan message: %v", ErrScanRow, err)
		}
		if m.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("%w: FetchPending - parse event id: %v", ErrScanRow, err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchPending - rows error: %w", ErrScanRow, err)
	}
	return messages, nil
}

// MarkDelivered отмечает сообщения отправленными
func (r *Repository) MarkDelivered(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("delivered_at", squirrel.Expr("NOW()")).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkDelivered - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkDelivered - execute update: %w", ErrExecQuery, err)
	}
	return nil
}

// MarkFailed увеличивает счетчик попыток и сохраняет последнюю ошибку
func (r *Repository) MarkFailed(ctx context.Context, ids []int64, cause string) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", cause).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %w", ErrExecQuery, err)
	}
	return nil
}
