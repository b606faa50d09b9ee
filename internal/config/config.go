package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Webhooks WebhookConfig  `mapstructure:"webhooks" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Kiosk    KioskConfig    `mapstructure:"kiosk" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// StorageConfig contains the Supabase Storage settings used for photo
// uploads and for resolving object keys to public URLs.
type StorageConfig struct {
	URL        string `mapstructure:"url" validate:"required,url"`
	ServiceKey string `mapstructure:"service_key" validate:"required"`
	Bucket     string `mapstructure:"bucket" validate:"required"`
}

// WebhookConfig holds the externally hosted workflow endpoints. The style and
// ingredients URLs are the two generation jobs; delivery and final message
// are the customer-facing sends.
type WebhookConfig struct {
	AnalysisURL     string        `mapstructure:"analysis_url" validate:"required,url"`
	StyleURL        string        `mapstructure:"style_url" validate:"required,url"`
	IngredientsURL  string        `mapstructure:"ingredients_url" validate:"required,url"`
	DeliveryURL     string        `mapstructure:"delivery_url" validate:"required,url"`
	FinalMessageURL string        `mapstructure:"final_message_url" validate:"required,url"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout" validate:"required"`
}

// LLMConfig contains all LLM integration related settings. An empty API key
// disables the fortune rewrite; the stored fortune rows are used verbatim.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	Model        string `mapstructure:"model"`
}

// KioskConfig tunes the customer flow timing.
type KioskConfig struct {
	// ThankYouDelay is how long the thank-you screen stays up before the
	// session resets for the next customer.
	ThankYouDelay time.Duration `mapstructure:"thank_you_delay" validate:"required"`

	// FinalMessageDelay is the pause between the artifact sends and the
	// closing message.
	FinalMessageDelay time.Duration `mapstructure:"final_message_delay" validate:"required"`

	// SessionMaxAge and PurgeInterval govern cleanup of abandoned sessions.
	SessionMaxAge time.Duration `mapstructure:"session_max_age" validate:"required"`
	PurgeInterval time.Duration `mapstructure:"purge_interval" validate:"required"`
}
