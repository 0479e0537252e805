package classifier

import (
	"encoding/json"
	"fmt"
)

type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from none (0) to critical (4). Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityNone:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return -1
	}
}

func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := Severity(raw)
	if raw == "" {
		v = SeverityNone
	}
	if v.Rank() < 0 {
		return fmt.Errorf("unknown severity %q", raw)
	}
	*s = v
	return nil
}

// Thresholds partition the confidence scale into severities. A confidence
// must be strictly above Emergency to count at all, and each band is
// half-open on the left: low is (Emergency, Low], medium (Low, Medium],
// high (Medium, High], critical (High, MaxConfidence].
type Thresholds struct {
	Emergency float64 `mapstructure:"emergency" json:"emergency"`
	Low       float64 `mapstructure:"low" json:"low"`
	Medium    float64 `mapstructure:"medium" json:"medium"`
	High      float64 `mapstructure:"high" json:"high"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Emergency: 0.5,
		Low:       3,
		Medium:    5,
		High:      7,
	}
}

// Validate rejects bands that overlap or fall outside [0, MaxConfidence].
func (t Thresholds) Validate() error {
	if t.Emergency < 0 {
		return fmt.Errorf("emergency threshold %.2f below 0", t.Emergency)
	}
	if !(t.Emergency < t.Low && t.Low < t.Medium && t.Medium < t.High) {
		return fmt.Errorf("thresholds must be strictly increasing: emergency=%.2f low=%.2f medium=%.2f high=%.2f",
			t.Emergency, t.Low, t.Medium, t.High)
	}
	if t.High >= MaxConfidence {
		return fmt.Errorf("high threshold %.2f leaves no critical band below %.0f", t.High, float64(MaxConfidence))
	}
	return nil
}

// SeverityFor maps a confidence onto a severity band.
func SeverityFor(confidence float64, t Thresholds) Severity {
	switch {
	case confidence <= t.Emergency:
		return SeverityNone
	case confidence <= t.Low:
		return SeverityLow
	case confidence <= t.Medium:
		return SeverityMedium
	case confidence <= t.High:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}
