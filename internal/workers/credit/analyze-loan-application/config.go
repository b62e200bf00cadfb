// internal/workers/credit/analyze-loan-application/config.go
package analyzeloanapplication

import "time"

type Config struct {
	// Timeout bounds the whole job. EvaluationTimeout bounds the pipeline
	// run alone and should be the smaller of the two.
	Timeout           time.Duration
	EvaluationTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		EvaluationTimeout: 10 * time.Second,
	}
}
