package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Deck     DeckConfig     `mapstructure:"deck"     validate:"required"`
	Session  SessionConfig  `mapstructure:"session"  validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database settings. An empty URL disables
// persistence and generated content is cached in memory only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains the settings for session tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// CallsPerMinute is the generation budget used to space outbound calls.
	CallsPerMinute int `mapstructure:"calls_per_minute" validate:"required,gt=0"`

	RetryInitialDelaySeconds int `mapstructure:"retry_initial_delay_seconds" validate:"required,gt=0"`
	RetryMaxDelaySeconds     int `mapstructure:"retry_max_delay_seconds"     validate:"required,gtefield=RetryInitialDelaySeconds"`
	RetryDeadlineSeconds     int `mapstructure:"retry_deadline_seconds"      validate:"required,gtefield=RetryMaxDelaySeconds"`

	// Temperature is passed to the model when non-negative.
	Temperature float32 `mapstructure:"temperature" validate:"gte=-1,lte=2"`

	// PromptFile optionally points at a YAML prompt pack overriding the
	// embedded defaults.
	PromptFile string `mapstructure:"prompt_file" validate:"omitempty,file"`
}

// DeckConfig contains upload limits.
type DeckConfig struct {
	MaxUploadMB int `mapstructure:"max_upload_mb" validate:"required,gt=0,lte=512"`
}

// SessionConfig controls the lifetime of study sessions.
type SessionConfig struct {
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes" validate:"required,gt=0"`
	SweepSchedule      string `mapstructure:"sweep_schedule"       validate:"required"`
}

// CacheConfig bounds the in-memory content cache used when no database is
// configured.
type CacheConfig struct {
	MemoryMaxEntries int `mapstructure:"memory_max_entries" validate:"required,gt=0"`
	MemoryTTLMinutes int `mapstructure:"memory_ttl_minutes" validate:"required,gt=0"`
}

// TaskConfig controls background deck analysis.
type TaskConfig struct {
	WorkerCount     int  `mapstructure:"worker_count"      validate:"required,gt=0"`
	QueueSize       int  `mapstructure:"queue_size"        validate:"required,gt=0"`
	AnalyzeOnUpload bool `mapstructure:"analyze_on_upload"`
}
