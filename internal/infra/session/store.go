package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-BookingEngine/internal/workflow"
)

// DefaultKeyPrefix префикс ключей сессий
const DefaultKeyPrefix = "booking:session:"

// Store хранилище черновиков записи в Redis.
// Одна сессия на клиента, ключ живет до ExpiresAt сессии
type Store struct {
	redis     *redis.Client
	tracer    trace.Tracer
	keyPrefix string
}

// NewStore создает хранилище сессий
func NewStore(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{
		redis:     client,
		tracer:    otel.Tracer("booking.internal.infra.session"),
		keyPrefix: keyPrefix,
	}
}

// Load возвращает сессию клиента или ErrSessionNotFound
func (s *Store) Load(ctx context.Context, clientID int64) (workflow.Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.load", trace.WithAttributes(attribute.Int64("client_id", clientID)))
	defer span.End()

	raw, err := s.redis.Get(ctx, s.key(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return workflow.Session{}, ErrSessionNotFound
		}
		span.RecordError(err)
		return workflow.Session{}, fmt.Errorf("%w: Load - get: %v", ErrRedis, err)
	}

	var sess workflow.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		span.RecordError(err)
		return workflow.Session{}, fmt.Errorf("%w: Load - unmarshal: %v", ErrDecode, err)
	}

	return sess, nil
}

// Save сохраняет сессию с TTL от UpdatedAt до ExpiresAt, оба момента выставлены часами
// вызывающего. Сессия без остатка TTL удаляется
func (s *Store) Save(ctx context.Context, sess workflow.Session) error {
	ctx, span := s.tracer.Start(ctx, "session.save", trace.WithAttributes(
		attribute.Int64("client_id", sess.ClientID),
		attribute.String("step", string(sess.State.Step)),
	))
	defer span.End()

	ttl := sess.TTL()
	if ttl <= 0 {
		return s.Delete(ctx, sess.ClientID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: Save - marshal: %v", ErrEncode, err)
	}

	if err := s.redis.Set(ctx, s.key(sess.ClientID), data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: Save - set: %v", ErrRedis, err)
	}
	return nil
}

// Delete удаляет сессию. Отсутствие ключа ошибкой не считается
func (s *Store) Delete(ctx context.Context, clientID int64) error {
	ctx, span := s.tracer.Start(ctx, "session.delete", trace.WithAttributes(attribute.Int64("client_id", clientID)))
	defer span.End()

	if err := s.redis.Del(ctx, s.key(clientID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: Delete - del: %v", ErrRedis, err)
	}
	return nil
}

func (s *Store) key(clientID int64) string {
	return s.keyPrefix + strconv.FormatInt(clientID, 10)
}
