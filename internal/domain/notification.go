package domain

// NotificationKind type of an outgoing message
type NotificationKind string

const (
	NotificationBookingRequested NotificationKind = "booking_requested"
	NotificationBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationBookingRejected  NotificationKind = "booking_rejected"
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
	NotificationBookingCompleted NotificationKind = "booking_completed"
	NotificationReminder         NotificationKind = "booking_reminder"
)

// NotificationAction a button attached to a message. Token is opaque for the transport
type NotificationAction struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Notification a message for a provider or a client
type Notification struct {
	RecipientID   int64                `json:"recipientId"`
	RecipientRole Role                 `json:"recipientRole"`
	Kind          NotificationKind     `json:"kind"`
	AppointmentID int64                `json:"appointmentId,omitempty"`
	Message       string               `json:"message"`
	Actions       []NotificationAction `json:"actions,omitempty"`
}
