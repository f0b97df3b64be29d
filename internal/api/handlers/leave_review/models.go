package leave_review

// ReviewRequest оценка 1..5 и необязательный текст
type ReviewRequest struct {
	Rating int     `json:"rating"`
	Text   *string `json:"text,omitempty"`
}
