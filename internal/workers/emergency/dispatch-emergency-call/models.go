// internal/workers/emergency/dispatch-emergency-call/models.go
package dispatchemergencycall

import (
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"
)

type Input struct {
	UserID          string              `json:"userId"`
	Classification  classifier.Result   `json:"classification"`
	Escalation      escalation.Decision `json:"escalation"`
	EmergencyNumber string              `json:"emergencyNumber,omitempty"`
	Location        *models.Coordinates `json:"location,omitempty"`
}

type Output struct {
	DispatchID   string `json:"dispatchId"`
	Status       string `json:"status"`
	Number       string `json:"number,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
	DispatchedAt string `json:"dispatchedAt"`
}

// DispatchRequest is the message published to the dispatch topic.
type DispatchRequest struct {
	DispatchID  string              `json:"dispatchId"`
	Number      string              `json:"number"`
	Category    string              `json:"category"`
	Severity    classifier.Severity `json:"severity"`
	Confidence  float64             `json:"confidence"`
	Location    *models.Coordinates `json:"location,omitempty"`
	UserID      string              `json:"userId,omitempty"`
	RequestedAt string              `json:"requestedAt"`
}

const (
	StatusPublished = "published"
	StatusSkipped   = "skipped"
)
