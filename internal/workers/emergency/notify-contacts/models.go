// internal/workers/emergency/notify-contacts/models.go
package notifycontacts

import (
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"
)

type Input struct {
	UserID         string              `json:"userId"`
	Text           string              `json:"text"`
	Classification classifier.Result   `json:"classification"`
	Escalation     escalation.Decision `json:"escalation"`
	Location       *models.Coordinates `json:"location,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
	SMSSent        int    `json:"smsSent"`
	EmailsSent     int    `json:"emailsSent"`
	Failures       int    `json:"failures"`
	SentAt         string `json:"sentAt"`
}

const (
	StatusSent       = "sent"
	StatusPartial    = "partial"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
	StatusNoContacts = "no_contacts"
)
