// internal/workers/emergency/select-guidance/models.go
package selectguidance

import (
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/models"
)

type Input struct {
	Text           string            `json:"text"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Classification classifier.Result `json:"classification"`
}

type Output struct {
	Response     string            `json:"response"`
	Source       string            `json:"source"`
	Topic        string            `json:"topic,omitempty"`
	DisasterType string            `json:"disasterType,omitempty"`
	Urgency      string            `json:"urgency,omitempty"`
	Guidance     *models.Guideline `json:"guidance,omitempty"`
}

// Where the reply came from.
const (
	SourceCache   = "cache"
	SourceSearch  = "search"
	SourceBuiltin = "builtin"
	SourceTopic   = "topic"
)

// Non-emergency reply topics.
const (
	TopicHospital = "hospital"
	TopicPolice   = "police"
	TopicHelp     = "help"
	TopicImage    = "image"
	TopicLocation = "location"
	TopicGreeting = "greeting"
)
