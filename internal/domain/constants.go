package domain

// Default configuration values
const (
	DefaultSlotDurationMinutes     = 60
	DefaultHorizonDays             = 14
	DefaultMinBookingNoticeMinutes = 0
	DefaultDraftTTLMinutes         = 30
	DefaultReminderLeadHours       = 24
)

// Business validation constants
const (
	MinSlotDurationMinutes    = 5
	MaxSlotDurationMinutes    = 480 // 8 hours
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 720
	MaxCommentLength          = 500
	MaxCancellationReasonLen  = 500
	MaxReviewLength           = 1000
	MaxDisplayNameLength      = 100
	MinRating                 = 1
	MaxRating                 = 5
	MinContactDigits          = 7
	MaxContactDigits          = 15 // E.164
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
