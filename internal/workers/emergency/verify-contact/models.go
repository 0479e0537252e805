// internal/workers/emergency/verify-contact/models.go
package verifycontact

type Input struct {
	Action    string `json:"action"`
	ContactID string `json:"contactId"`
	Channel   string `json:"channel,omitempty"`
	Code      string `json:"code,omitempty"`
}

type Output struct {
	ContactID string `json:"contactId"`
	Status    string `json:"status"`
	Channel   string `json:"channel,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

const (
	ActionSend    = "send"
	ActionConfirm = "confirm"
)

const (
	StatusSent     = "sent"
	StatusVerified = "verified"
	StatusInvalid  = "invalid"
	StatusExpired  = "expired"
)
