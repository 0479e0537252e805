// internal/workers/emergency/dispatch-emergency-call/config.go
package dispatchemergencycall

import "time"

type Config struct {
	Timeout  time.Duration
	TopicARN string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
