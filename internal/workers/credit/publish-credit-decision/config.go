// internal/workers/credit/publish-credit-decision/config.go
package publishcreditdecision

import "time"

type Config struct {
	Enabled       bool
	TopicARN      string
	RatePerSecond float64 // 0 disables limiting
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		RatePerSecond: 50,
		Timeout:       10 * time.Second,
	}
}
