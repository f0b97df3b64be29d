package session

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrSessionNotFound возвращается, когда черновика нет или он истек
	ErrSessionNotFound = fmt.Errorf("session.store: session not found: %w", domain.ErrNotFound)

	// ErrEncode возвращается при ошибке сериализации сессии
	ErrEncode = fmt.Errorf("session.store: failed to encode session: %w", domain.ErrPersistence)

	// ErrDecode возвращается, когда в Redis лежит поврежденная сессия
	ErrDecode = fmt.Errorf("session.store: failed to decode session: %w", domain.ErrPersistence)

	// ErrRedis возвращается при ошибке обращения к Redis
	ErrRedis = fmt.Errorf("session.store: redis error: %w", domain.ErrPersistence)
)
