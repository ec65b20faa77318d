package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server Server `mapstructure:"server" validate:"required"`
	Store  Store  `mapstructure:"store"  validate:"required"`
	SRS    SRS    `mapstructure:"srs"`
	Gemini Gemini `mapstructure:"gemini"`
}

// Server contains all server-related configuration settings.
type Server struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Store selects and configures the card store backend.
type Store struct {
	// Driver is one of "memory", "sqlite" or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres"`

	// DSN is the sqlite file path or the postgres connection URL.
	// Unused by the memory driver.
	DSN string `mapstructure:"dsn" validate:"required_unless=Driver memory"`
}

// SRS overrides the scheduling algorithm defaults. Zero fields keep the
// standard SM-2 values.
type SRS struct {
	MinEaseFactor      float64 `mapstructure:"min_ease_factor"      validate:"omitempty,gte=1"`
	FirstIntervalDays  int     `mapstructure:"first_interval_days"  validate:"omitempty,gte=1"`
	SecondIntervalDays int     `mapstructure:"second_interval_days" validate:"omitempty,gte=1"`
	LapseIntervalDays  int     `mapstructure:"lapse_interval_days"  validate:"omitempty,gte=1"`
}

// Gemini contains the card content generator settings. An empty APIKey
// disables LLM-backed generation.
type Gemini struct {
	APIKey        string `mapstructure:"api_key"`
	ModelName     string `mapstructure:"model_name"`
	CardsPerTopic int    `mapstructure:"cards_per_topic" validate:"omitempty,gte=1"`
	MaxRetries    int    `mapstructure:"max_retries"     validate:"omitempty,gte=0"`
	RetryDelaySec int    `mapstructure:"retry_delay_sec" validate:"omitempty,gte=0"`
}
