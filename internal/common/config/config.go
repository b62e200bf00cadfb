// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Credit        CreditConfig            `mapstructure:"credit"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Server        ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// CreditConfig locates the policy override and bounds a single evaluation.
type CreditConfig struct {
	PolicyFile        string `mapstructure:"policy_file"`        // empty: built-in defaults
	EvaluationTimeout int    `mapstructure:"evaluation_timeout"` // milliseconds
}

// IntegrationConfig holds settings for outbound services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SNS    struct {
			Enabled              bool    `mapstructure:"enabled"`
			DecisionTopicARN     string  `mapstructure:"decision_topic_arn"`
			PublishRatePerSecond float64 `mapstructure:"publish_rate_per_second"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName      string  `mapstructure:"service_name"`
	JaegerEndpoint   string  `mapstructure:"jaeger_endpoint"`
	TraceSampleRatio float64 `mapstructure:"trace_sample_ratio"`
}

// ServerConfig is the health and metrics listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}
