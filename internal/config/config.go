// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/hpn/hpn-g-bot/internal/bot"
	"github.com/hpn/hpn-g-bot/internal/domain"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Bot configuration
	Bot BotConfig `json:"bot" mapstructure:"bot"`

	// OpenAI endpoint configuration
	OpenAI OpenAIConfig `json:"openai" mapstructure:"openai"`

	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// BotConfig holds the chat adapter's transport options.
type BotConfig struct {
	// SystemMessage is sent ahead of every user message.
	SystemMessage string `json:"system_message" mapstructure:"system_message"`

	// Retries is the maximum number of attempts per chat call.
	Retries int `json:"retries" mapstructure:"retries"`

	// Temperature controls randomness of the completion (0.0-2.0).
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// Debug enables logging of raw responses and HTTP round trips.
	Debug bool `json:"debug" mapstructure:"debug"`

	// Model is the completion model name.
	Model string `json:"model" mapstructure:"model"`
}

// OpenAIConfig holds the completion endpoint configuration.
type OpenAIConfig struct {
	// APIKey is the API credential. Only ever sourced from OPENAI_API_KEY.
	APIKey string `json:"-" mapstructure:"api_key"`

	// APIBaseURL is the completion endpoint base URL.
	APIBaseURL string `json:"api_base_url" mapstructure:"api_base_url"`

	// TimeoutSeconds bounds a single HTTP round trip.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`

	// TokenLimits bounds request and response sizes.
	TokenLimits domain.TokenLimits `json:"token_limits" mapstructure:"token_limits"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfigWithPath returns the singleton Configuration instance, loading it on
// first call. An empty path searches the default config locations.
func GetConfigWithPath(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if any field is out of range.
// A missing API key is not reported here: constructing the bot fails on it.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Bot.Retries < 1 {
		validationErrors = append(validationErrors, "bot.retries must be at least 1")
	}

	if c.Bot.Temperature < 0 || c.Bot.Temperature > 2 {
		validationErrors = append(validationErrors, "bot.temperature must be between 0.0 and 2.0")
	}

	if c.OpenAI.TimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "openai.timeout_seconds cannot be negative")
	}

	limits := c.OpenAI.TokenLimits
	if limits.MaxTokens < 0 || limits.ResponseTokens < 0 {
		validationErrors = append(validationErrors, "openai.token_limits cannot be negative")
	} else if limits.MaxTokens > 0 && limits.ResponseTokens >= limits.MaxTokens {
		validationErrors = append(validationErrors, "openai.token_limits.response_tokens must be below max_tokens")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "logging.level",
			Value:         c.Logging.Level,
			AllowedValues: []string{"debug", "info", "warn", "error"},
		}).Error())
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "logging.format",
			Value:         c.Logging.Format,
			AllowedValues: []string{"json", "text"},
		}).Error())
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// BotOptions returns the transport options for bot.New.
func (c *Configuration) BotOptions() bot.Options {
	return bot.Options{
		APIKey:        c.OpenAI.APIKey,
		APIBaseURL:    c.OpenAI.APIBaseURL,
		SystemMessage: c.Bot.SystemMessage,
		Retries:       c.Bot.Retries,
		Temperature:   c.Bot.Temperature,
		Debug:         c.Bot.Debug,
		Timeout:       time.Duration(c.OpenAI.TimeoutSeconds) * time.Second,
	}
}

// ModelOptions returns the model options for bot.New.
func (c *Configuration) ModelOptions() bot.ModelOptions {
	return bot.ModelOptions{
		Model:       c.Bot.Model,
		TokenLimits: c.OpenAI.TokenLimits,
	}
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
