package appointments

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// transitionNotification сообщение другой стороне записи о смене статуса
func transitionNotification(appt *domain.Appointment, action domain.AppointmentAction, actor domain.Actor) domain.Notification {
	when := fmt.Sprintf("%s, %s %s-%s",
		appt.ServiceName, appt.AppointmentDate.Format(domain.DateFormat), appt.StartTime, appt.EndTime)

	n := domain.Notification{
		RecipientID:   appt.ClientID,
		RecipientRole: domain.RoleClient,
		AppointmentID: appt.ID,
	}

	switch action {
	case domain.ActionAccept:
		n.Kind = domain.NotificationBookingConfirmed
		n.Message = "Мастер подтвердил запись: " + when + "."
		n.Actions = []domain.NotificationAction{
			{Label: "Отменить запись", Token: domain.ActionToken(domain.ActionCancel, appt.ID)},
		}

	case domain.ActionReject:
		n.Kind = domain.NotificationBookingRejected
		n.Message = withReason("Мастер отклонил запись: "+when+".", appt.CancellationReason)

	case domain.ActionCancel:
		n.Kind = domain.NotificationBookingCancelled
		if actor.Role == domain.RoleClient {
			n.RecipientID = appt.ProviderID
			n.RecipientRole = domain.RoleProvider
			n.Message = withReason("Клиент отменил запись: "+when+".", appt.CancellationReason)
		} else {
			n.Message = withReason("Мастер отменил запись: "+when+".", appt.CancellationReason)
		}

	case domain.ActionComplete:
		n.Kind = domain.NotificationBookingCompleted
		n.Message = "Спасибо за визит: " + when + ". Оцените, пожалуйста, работу мастера."
		for rating := domain.MinRating; rating <= domain.MaxRating; rating++ {
			n.Actions = append(n.Actions, domain.NotificationAction{
				Label: strings.Repeat("★", rating),
				Token: domain.ReviewToken(appt.ID, rating),
			})
		}
	}

	return n
}

func withReason(msg string, reason *string) string {
	if reason == nil {
		return msg
	}
	return msg + "\nПричина: " + *reason
}
