package appointment_action

// ActionRequest тело запроса, причина нужна только для reject и cancel
type ActionRequest struct {
	Reason *string `json:"reason,omitempty"`
}
