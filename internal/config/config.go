package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tumorboard-evidence-service/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/tumorboard-evidence-service/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("TUMORBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// External API defaults
	viper.SetDefault("external_api.myvariant.base_url", "https://myvariant.info/v1")
	viper.SetDefault("external_api.myvariant.timeout", "30s")
	viper.SetDefault("external_api.myvariant.max_retries", 3)
	viper.SetDefault("external_api.myvariant.retry_wait_min", "2s")
	viper.SetDefault("external_api.myvariant.retry_wait_max", "10s")
	viper.SetDefault("external_api.myvariant.rate_limit", 10)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetMyVariantConfig returns MyVariant API configuration
func (m *Manager) GetMyVariantConfig() *domain.MyVariantConfig {
	return &m.config.ExternalAPI.MyVariant
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate external API configuration
	mv := config.ExternalAPI.MyVariant
	if mv.BaseURL == "" {
		return fmt.Errorf("MyVariant base URL is required")
	}
	if mv.Timeout <= 0 {
		return fmt.Errorf("invalid MyVariant timeout: %s", mv.Timeout)
	}
	if mv.MaxRetries < 1 {
		return fmt.Errorf("invalid MyVariant max retries: %d", mv.MaxRetries)
	}
	if mv.RetryWaitMin > mv.RetryWaitMax {
		return fmt.Errorf("MyVariant retry wait min %s exceeds max %s", mv.RetryWaitMin, mv.RetryWaitMax)
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
