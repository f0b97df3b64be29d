package workflow

import "time"

// Session диалог одного клиента со сроком жизни
type Session struct {
	ClientID  int64     `json:"clientId"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSession начинает диалог с первого шага
func NewSession(clientID int64, now time.Time, ttl time.Duration) Session {
	return Session{
		ClientID:  clientID,
		State:     Initial(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired возвращает true, если черновик пережил свой TTL
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL остаток жизни сессии по часам, которыми она обновлена последней
func (s Session) TTL() time.Duration {
	return s.ExpiresAt.Sub(s.UpdatedAt)
}

// Advance возвращает копию с новым состоянием и продленным сроком
func (s Session) Advance(state State, now time.Time, ttl time.Duration) Session {
	s.State = state
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
	return s
}
