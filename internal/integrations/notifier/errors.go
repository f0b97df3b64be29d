package notifier

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var (
	// ErrPublish возвращается, когда брокер не принял пачку сообщений
	ErrPublish = fmt.Errorf("notifier: failed to publish messages: %w", domain.ErrPersistence)

	// ErrOutbox возвращается при ошибке чтения или обновления outbox
	ErrOutbox = fmt.Errorf("notifier: outbox error: %w", domain.ErrPersistence)
)
