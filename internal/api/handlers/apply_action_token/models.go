package apply_action_token

// ApplyTokenRequest нажатая кнопка уведомления
type ApplyTokenRequest struct {
	Token string `json:"token"`
}
