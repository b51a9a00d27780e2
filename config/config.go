// Package config handles loading and validation of the notification daemon's
// configuration from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/poopay/poopay-realtime/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	defaultAPIURL = "http://localhost:3333"
)

// ServerConfig holds the local API listener settings.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Address        string      `mapstructure:"ADDRESS" yaml:"address"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
}

// APIConfig holds the backend REST settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// Timeout returns the REST client timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LiveConfig holds the live channel (Socket.IO) settings.
type LiveConfig struct {
	// URL of the Socket.IO server. Defaults to the API base URL without a trailing /api.
	URL string `mapstructure:"URL" yaml:"url"`
	// Delay between reconnection attempts, in milliseconds
	ReconnectDelayMS int `mapstructure:"RECONNECT_DELAY_MS" yaml:"reconnect_delay_ms"`
	// Consecutive failed attempts before the manager gives up
	ReconnectAttempts int `mapstructure:"RECONNECT_ATTEMPTS" yaml:"reconnect_attempts"`
	// Upper bound for dial plus Socket.IO connect handshake, in seconds
	HandshakeTimeoutSeconds int `mapstructure:"HANDSHAKE_TIMEOUT_SECONDS" yaml:"handshake_timeout_seconds"`
}

// ReconnectDelay returns the fixed delay between reconnection attempts.
func (c LiveConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMS) * time.Millisecond
}

// HandshakeTimeout returns the handshake bound.
func (c LiveConfig) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}

// AuthConfig holds the identity the daemon runs as. UserID may be left empty
// and derived from the token claims.
type AuthConfig struct {
	Token  string `mapstructure:"TOKEN" yaml:"token"`
	UserID string `mapstructure:"USER_ID" yaml:"user_id"`
}

// Config aggregates all configuration sections.
type Config struct {
	Server ServerConfig `mapstructure:"SERVER" yaml:"server"`
	API    APIConfig    `mapstructure:"API" yaml:"api"`
	Live   LiveConfig   `mapstructure:"LIVE" yaml:"live"`
	Auth   AuthConfig   `mapstructure:"AUTH" yaml:"auth"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// YAML renders the effective configuration with the token masked.
func (c *Config) YAML() ([]byte, error) {
	masked := *c
	masked.Auth.Token = logger.MaskJWT(c.Auth.Token)
	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// bindEnvVars binds each config key to one or more environment variables.
// Format: []{configKey, envVar...}
func bindEnvVars(v *viper.Viper, bindings [][]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration using Viper: defaults, an optional YAML file
// named by POOPAY_CONFIG, then environment variables. The result is validated.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.ADDRESS", "127.0.0.1:8090")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("API.BASE_URL", defaultAPIURL)
	v.SetDefault("API.TIMEOUT_SECONDS", 10)
	v.SetDefault("LIVE.URL", "")
	v.SetDefault("LIVE.RECONNECT_DELAY_MS", 1000)
	v.SetDefault("LIVE.RECONNECT_ATTEMPTS", 5)
	v.SetDefault("LIVE.HANDSHAKE_TIMEOUT_SECONDS", 10)
	v.SetDefault("AUTH.TOKEN", "")
	v.SetDefault("AUTH.USER_ID", "")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.ADDRESS", "POOPAY_LISTEN_ADDRESS"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		// URLBACK is the variable the mobile app reads its backend from.
		{"API.BASE_URL", "POOPAY_API_URL", "URLBACK"},
		{"API.TIMEOUT_SECONDS", "POOPAY_API_TIMEOUT_SECONDS"},
		{"LIVE.URL", "POOPAY_LIVE_URL"},
		{"LIVE.RECONNECT_DELAY_MS", "POOPAY_LIVE_RECONNECT_DELAY_MS"},
		{"LIVE.RECONNECT_ATTEMPTS", "POOPAY_LIVE_RECONNECT_ATTEMPTS"},
		{"LIVE.HANDSHAKE_TIMEOUT_SECONDS", "POOPAY_LIVE_HANDSHAKE_TIMEOUT_SECONDS"},
		{"AUTH.TOKEN", "POOPAY_AUTH_TOKEN"},
		{"AUTH.USER_ID", "POOPAY_USER_ID"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if err := v.BindEnv("CONFIG_FILE", "POOPAY_CONFIG"); err != nil {
		return nil, fmt.Errorf("failed to bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if cfg.Live.URL == "" {
		cfg.Live.URL = DeriveLiveURL(cfg.API.BaseURL)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"listen_address", cfg.Server.Address,
		"api_base_url", cfg.API.BaseURL,
		"live_url", cfg.Live.URL,
		"reconnect_attempts", cfg.Live.ReconnectAttempts,
		"reconnect_delay_ms", cfg.Live.ReconnectDelayMS,
		"token", logger.MaskJWT(cfg.Auth.Token),
	)
	return &cfg, nil
}

// DeriveLiveURL strips a trailing /api from the REST base URL; the Socket.IO
// server is mounted at the host root.
func DeriveLiveURL(apiURL string) string {
	trimmed := strings.TrimSuffix(apiURL, "/")
	return strings.TrimSuffix(trimmed, "/api")
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}

	if err := validateHTTPURL("API base URL", cfg.API.BaseURL); err != nil {
		return err
	}
	if cfg.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}

	if err := validateHTTPURL("live URL", cfg.Live.URL); err != nil {
		return err
	}
	if cfg.Live.ReconnectDelayMS <= 0 {
		return fmt.Errorf("live reconnect delay must be positive")
	}
	if cfg.Live.ReconnectAttempts < 0 {
		return fmt.Errorf("live reconnect attempts must not be negative")
	}
	if cfg.Live.HandshakeTimeoutSeconds <= 0 {
		return fmt.Errorf("live handshake timeout must be positive")
	}

	if cfg.Auth.Token == "" {
		return fmt.Errorf("auth token is required")
	}

	return nil
}

func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", name, raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	default:
		return fmt.Errorf("invalid %s '%s': unsupported scheme %q", name, raw, u.Scheme)
	}
}
