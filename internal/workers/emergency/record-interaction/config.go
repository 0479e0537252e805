// internal/workers/emergency/record-interaction/config.go
package recordinteraction

import "time"

type Config struct {
	Timeout  time.Duration
	StatsKey string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		StatsKey: "stats:chats",
	}
}
