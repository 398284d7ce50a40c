package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ResetPasswordMailData struct {
	DisplayName string `json:"display_name"`
	OTP         string `json:"otp"`
	Expiration  int    `json:"expiration"` // minutes
}

type IncidentAssignedMailData struct {
	DisplayName  string `json:"display_name"`
	IncidentID   string `json:"incident_id"`
	Title        string `json:"title"`
	RotationName string `json:"rotation_name"`
}
