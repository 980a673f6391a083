package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. Token issuance is handled
// by an external identity service; this service only verifies tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// EngineConfig contains settings for the external content generation engine.
type EngineConfig struct {
	URL                  string `mapstructure:"url"                    validate:"required,url"`
	TimeoutSeconds       int    `mapstructure:"timeout_seconds"        validate:"gte=1"`
	HealthTimeoutSeconds int    `mapstructure:"health_timeout_seconds" validate:"gte=1"`
	// MaxRetries is the number of additional generation attempts made by
	// the orchestrator after a transport or server-side engine failure.
	// Zero disables retries.
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// WorkerConfig contains settings for the background generation worker pool.
type WorkerConfig struct {
	Count     int `mapstructure:"count"      validate:"gte=1"`
	QueueSize int `mapstructure:"queue_size" validate:"gte=1"`
}
