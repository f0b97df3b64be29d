package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID int64     // ID мастера
	ServiceID  int64     // ID услуги, её длительность задает длину слота
	Date       time.Time // Дата (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ProviderID      int64
	ServiceID       int64
	Date            time.Time
	DurationMinutes int
	Service         *domain.Service
	Slots           []domain.Slot // Отсортированы по времени начала
}
