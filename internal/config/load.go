package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults double as the key registry: AutomaticEnv only surfaces keys
	// viper already knows about, so every key gets a default, empty for the
	// required ones.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("storage.url", "")
	v.SetDefault("storage.service_key", "")
	v.SetDefault("storage.bucket", "leads")
	v.SetDefault("webhooks.analysis_url", "")
	v.SetDefault("webhooks.style_url", "")
	v.SetDefault("webhooks.ingredients_url", "")
	v.SetDefault("webhooks.delivery_url", "")
	v.SetDefault("webhooks.final_message_url", "")
	v.SetDefault("webhooks.analysis_timeout", "60s")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("kiosk.thank_you_delay", "5s")
	v.SetDefault("kiosk.final_message_delay", "2s")
	v.SetDefault("kiosk.session_max_age", "30m")
	v.SetDefault("kiosk.purge_interval", "10m")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with the SNAPLEAD_ prefix override everything,
	// e.g. SNAPLEAD_DATABASE_URL, SNAPLEAD_WEBHOOKS_STYLE_URL.
	v.SetEnvPrefix("SNAPLEAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
