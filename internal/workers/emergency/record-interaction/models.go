// internal/workers/emergency/record-interaction/models.go
package recordinteraction

type Input struct {
	UserID            string `json:"userId,omitempty"`
	Prompt            string `json:"prompt"`
	Response          string `json:"response"`
	DisasterType      string `json:"disasterType,omitempty"`
	EmergencyDetected bool   `json:"emergencyDetected"`
}

type Output struct {
	RecordID   string `json:"recordId"`
	RecordedAt string `json:"recordedAt"`
}

// Stats summarises the interactions recorded so far.
type Stats struct {
	Total         int64            `json:"total"`
	Emergency     int64            `json:"emergency"`
	ByType        map[string]int64 `json:"byType"`
	EmergencyRate float64          `json:"emergencyRate"`
}
