// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Model struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"model" yaml:"model"`

	Inference struct {
		ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
		ParallelThreshold   int     `mapstructure:"parallel_threshold" yaml:"parallel_threshold"`
		Workers             int     `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"inference" yaml:"inference"`

	Anomaly struct {
		Contamination float64 `mapstructure:"contamination" yaml:"contamination"`
	} `mapstructure:"anomaly" yaml:"anomaly"`

	Server struct {
		Host                   string   `mapstructure:"host" yaml:"host"`
		Port                   int      `mapstructure:"port" yaml:"port"`
		ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
		ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
		AllowedOrigins         []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		Version                string   `mapstructure:"version" yaml:"version"`
	} `mapstructure:"server" yaml:"server"`
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.txn-classifier")
	v.AddConfigPath(".txn-classifier")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("TXN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. MODEL_PATH is honoured unprefixed for compatibility with existing deployments
	if err := v.BindEnv("model.path", "TXN_MODEL_PATH", "MODEL_PATH"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind MODEL_PATH environment variable: %v\n", err)
	}

	return unmarshal(v)
}

// LoadConfigFile reads configuration from an explicit file, still applying
// defaults and environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TXN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.BindEnv("model.path", "TXN_MODEL_PATH", "MODEL_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind MODEL_PATH: %w", err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Model defaults
	v.SetDefault("model.path", "model.yaml")

	// Inference defaults
	v.SetDefault("inference.confidence_threshold", 0.5)
	v.SetDefault("inference.parallel_threshold", 256)
	v.SetDefault("inference.workers", 0)

	// Anomaly defaults
	v.SetDefault("anomaly.contamination", 0.05)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5000", "http://localhost:5173"})
	v.SetDefault("server.version", "1.0.0")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Model.Path) == "" {
		return fmt.Errorf("model.path must not be empty")
	}

	if config.Inference.ConfidenceThreshold < 0.0 || config.Inference.ConfidenceThreshold > 1.0 {
		return fmt.Errorf("inference.confidence_threshold must be between 0.0 and 1.0, got: %f", config.Inference.ConfidenceThreshold)
	}
	if config.Inference.ParallelThreshold < 1 {
		return fmt.Errorf("inference.parallel_threshold must be at least 1, got: %d", config.Inference.ParallelThreshold)
	}
	if config.Inference.Workers < 0 {
		return fmt.Errorf("inference.workers must not be negative, got: %d", config.Inference.Workers)
	}

	if config.Anomaly.Contamination <= 0.0 || config.Anomaly.Contamination > 1.0 {
		return fmt.Errorf("anomaly.contamination must be in (0.0, 1.0], got: %f", config.Anomaly.Contamination)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}
	if config.Server.ReadTimeoutSeconds < 1 || config.Server.WriteTimeoutSeconds < 1 || config.Server.ShutdownTimeoutSeconds < 1 {
		return fmt.Errorf("server timeouts must be at least 1 second")
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
