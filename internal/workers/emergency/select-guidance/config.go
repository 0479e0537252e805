// internal/workers/emergency/select-guidance/config.go
package selectguidance

import "time"

type Config struct {
	Timeout       time.Duration
	SearchTimeout time.Duration
	Index         string
	CacheTTL      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		SearchTimeout: 3 * time.Second,
		Index:         "disaster_guidance",
		CacheTTL:      10 * time.Minute,
	}
}
