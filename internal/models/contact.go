package models

import "time"

// Verification states of an emergency contact.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Verification delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type EmergencyContact struct {
	ID                 string     `json:"id" db:"id"`
	UserID             string     `json:"userId" db:"user_id"`
	Name               string     `json:"name" db:"name"`
	Phone              string     `json:"phone" db:"phone"`
	Email              string     `json:"email,omitempty" db:"email"`
	Relationship       string     `json:"relationship" db:"relationship"`
	Priority           int        `json:"priority" db:"priority"` // 1 is the primary contact
	LocationSharing    bool       `json:"locationSharing" db:"location_sharing_enabled"`
	VerificationStatus string     `json:"verificationStatus" db:"verification_status"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
}

// ChatRecord is one assistant exchange kept in chat_history.
type ChatRecord struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"userId,omitempty" db:"user_id"`
	Prompt            string    `json:"prompt" db:"prompt"`
	Response          string    `json:"response" db:"response"`
	DisasterType      string    `json:"disasterType,omitempty" db:"disaster_type"`
	EmergencyDetected bool      `json:"emergencyDetected" db:"emergency_detected"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// Guideline is a disaster guidance document from the guidance index.
type Guideline struct {
	ID             string   `json:"id,omitempty"`
	DisasterType   string   `json:"disaster_type"`
	Keywords       []string `json:"keywords"`
	GuidanceText   string   `json:"guidance_text"`
	EmergencyLevel string   `json:"emergency_level"`
}
