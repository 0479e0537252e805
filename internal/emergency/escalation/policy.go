// Package escalation turns a classification into the notification actions
// the dispatch side should take.
package escalation

import (
	"strings"

	"emergency-workers/internal/emergency/classifier"
)

type Decision struct {
	ShouldAutoCall       bool `json:"shouldAutoCall"`
	ShouldNotifyContacts bool `json:"shouldNotifyContacts"`
	ShouldAttachLocation bool `json:"shouldAttachLocation"`
}

// Any reports whether at least one action is requested.
func (d Decision) Any() bool {
	return d.ShouldAutoCall || d.ShouldNotifyContacts || d.ShouldAttachLocation
}

// Decide is a pure function of the result's severity.
func Decide(r classifier.Result) Decision {
	switch r.Severity {
	case classifier.SeverityCritical:
		return Decision{ShouldAutoCall: true, ShouldNotifyContacts: true, ShouldAttachLocation: true}
	case classifier.SeverityHigh:
		return Decision{ShouldNotifyContacts: true, ShouldAttachLocation: true}
	case classifier.SeverityMedium:
		return Decision{ShouldNotifyContacts: true}
	default:
		return Decision{}
	}
}

// Dispatch numbers used by the client's dialer.
const (
	NumberAllEmergencies = "112"
	NumberPolice         = "100"
	NumberFire           = "101"
	NumberMedical        = "108"
)

// EmergencyNumber picks the dispatch line for a category.
func EmergencyNumber(category string) string {
	switch strings.ToLower(category) {
	case "medical":
		return NumberMedical
	case "fire":
		return NumberFire
	case "crime":
		return NumberPolice
	default:
		return NumberAllEmergencies
	}
}

// UrgencyLabel is the upper-case banner shown with an assistant reply.
func UrgencyLabel(s classifier.Severity) string {
	switch s {
	case classifier.SeverityCritical:
		return "CRITICAL"
	case classifier.SeverityHigh:
		return "HIGH"
	case classifier.SeverityMedium:
		return "MEDIUM"
	case classifier.SeverityLow:
		return "LOW"
	default:
		return ""
	}
}
