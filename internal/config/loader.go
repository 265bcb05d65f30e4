// Package config provides configuration management using the Singleton pattern.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hpn/hpn-g-bot/internal/adapter"
	"github.com/hpn/hpn-g-bot/internal/bot"
	"github.com/hpn/hpn-g-bot/internal/domain"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "HPN_BOT"

	// EnvBaseURL overrides the completion endpoint base URL.
	EnvBaseURL = "OPENAI_BASE_URL"

	// DefaultSystemMessage is sent when no system message is configured.
	DefaultSystemMessage = "You are a highly experienced software engineer reviewing code changes. " +
		"Give concise, specific and actionable feedback."
)

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. OPENAI_API_KEY / OPENAI_BASE_URL
// 2. Environment variables (prefixed with HPN_BOT_)
// 3. config.yaml
// 4. Default values
func loadConfig(configPath string) (*Configuration, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hpn-g-bot")
		v.AddConfigPath("$HOME/.hpn-g-bot")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, &ConfigError{Op: "bind_env", Err: err}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Fprintf(os.Stderr, "[CONFIG] Config file not found, using environment variables and defaults\n")
		} else {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	cfg.OpenAI.APIKey = strings.TrimSpace(cfg.OpenAI.APIKey)
	if cfg.OpenAI.TokenLimits == (domain.TokenLimits{}) {
		cfg.OpenAI.TokenLimits = domain.DefaultTokenLimits(cfg.Bot.Model)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnv binds keys that have no default or that read unprefixed variables.
func bindEnv(v *viper.Viper) error {
	if err := v.BindEnv("openai.api_key", bot.EnvAPIKey); err != nil {
		return err
	}
	if err := v.BindEnv("openai.api_base_url", envPrefix+"_OPENAI_API_BASE_URL", EnvBaseURL); err != nil {
		return err
	}
	for _, key := range []string{"openai.token_limits.max_tokens", "openai.token_limits.response_tokens"} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Bot defaults
	v.SetDefault("bot.system_message", DefaultSystemMessage)
	v.SetDefault("bot.retries", 3)
	v.SetDefault("bot.temperature", 0.0)
	v.SetDefault("bot.debug", false)
	v.SetDefault("bot.model", domain.DefaultModel)

	// OpenAI defaults
	v.SetDefault("openai.api_base_url", adapter.DefaultOpenAIBaseURL)
	v.SetDefault("openai.timeout_seconds", 60)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
