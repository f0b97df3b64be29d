package get_available_dates

import "time"

// Request модель запроса ближайших дат со свободными слотами
type Request struct {
	ProviderID int64
	ServiceID  int64
}

// Response даты по возрастанию, на каждую есть хотя бы один свободный слот
type Response struct {
	ProviderID int64
	ServiceID  int64
	Dates      []time.Time
}
