// internal/workers/emergency/notify-contacts/config.go
package notifycontacts

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	MapBaseURL   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   true,
		MapBaseURL:   "https://www.google.com/maps",
	}
}
