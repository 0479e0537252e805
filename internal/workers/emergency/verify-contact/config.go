// internal/workers/emergency/verify-contact/config.go
package verifycontact

import "time"

type Config struct {
	Timeout time.Duration
	CodeTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
		CodeTTL: 30 * time.Minute,
	}
}
