package workflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Токены вариантов, которые несут кнопки диалога
const (
	tokenProvider   = "p:"
	tokenService    = "s:"
	tokenDate       = "d:"
	tokenTime       = "t:"
	tokenBack       = "back"
	tokenCancel     = "cancel"
	tokenAddComment = "comment"
	tokenConfirm    = "confirm"
)

// EncodeToken возвращает токен варианта для события пользователя.
// События драйвера и EventText токена не имеют и кодируются в ""
func EncodeToken(ev Event) string {
	switch ev.Kind {
	case EventSelectProvider:
		return tokenProvider + strconv.FormatInt(ev.ProviderID, 10)
	case EventSelectService:
		return tokenService + strconv.FormatInt(ev.ServiceID, 10)
	case EventSelectDate:
		return tokenDate + ev.Date.Format(domain.DateFormat)
	case EventSelectTime:
		return tokenTime + ev.Time.String()
	case EventBack:
		return tokenBack
	case EventCancel:
		return tokenCancel
	case EventAddComment:
		return tokenAddComment
	case EventConfirm:
		return tokenConfirm
	}
	return ""
}

// DecodeToken разбирает токен варианта. Нераспознанное становится EventUnknown
func DecodeToken(token string) Event {
	token = strings.TrimSpace(token)

	switch token {
	case tokenBack:
		return Back()
	case tokenCancel:
		return Cancel()
	case tokenAddComment:
		return AddComment()
	case tokenConfirm:
		return Confirm()
	}

	switch {
	case strings.HasPrefix(token, tokenProvider):
		if id, ok := parseID(token[len(tokenProvider):]); ok {
			return SelectProvider(id)
		}
	case strings.HasPrefix(token, tokenService):
		if id, ok := parseID(token[len(tokenService):]); ok {
			return SelectService(id)
		}
	case strings.HasPrefix(token, tokenDate):
		if date, err := time.Parse(domain.DateFormat, token[len(tokenDate):]); err == nil {
			return SelectDate(date)
		}
	case strings.HasPrefix(token, tokenTime):
		if t, err := types.NewTimeStringFromString(token[len(tokenTime):]); err == nil {
			return SelectTime(t)
		}
	}

	return Unknown()
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
