// internal/workers/emergency/classify-utterance/models.go
package classifyutterance

import (
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/command"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"
)

type Input = models.Utterance

type Output struct {
	Classification  classifier.Result   `json:"classification"`
	Escalation      escalation.Decision `json:"escalation"`
	Command         command.Command     `json:"command"`
	EmergencyNumber string              `json:"emergencyNumber,omitempty"`
	Urgency         string              `json:"urgency,omitempty"`
	IsEmergency     bool                `json:"isEmergency"`
	ClassifiedAt    string              `json:"classifiedAt"`
}
