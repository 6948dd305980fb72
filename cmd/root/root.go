// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/txn-classifier/internal/config"
	"fjacquet/txn-classifier/internal/container"
	"fjacquet/txn-classifier/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	ModelPath  string
	LogLevel   string
	LogFormat  string
	Input      string
	Output     string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the configuration resolved before any subcommand runs
	AppConfig *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "txn-classifier",
		Short: "Classify bank transactions and flag unusual amounts.",
		Long: `txn-classifier classifies bank transaction descriptions into spending
categories using a pre-trained TF-IDF and logistic regression model, and flags
transactions whose amount is unusual for their category.

It runs either as an HTTP service (serve) or as a one-shot CLI over CSV files.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to txn-classifier!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		SilenceUsage: true,
	}

	// SharedFlags are accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: search config.yaml)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ModelPath, "model", "m", "", "Model artifact path (overrides model.path)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format: text or json")
}

func loadConfig() error {
	if _, err := config.LoadEnv(); err != nil {
		Log.WithError(err).Warn("Failed to load .env file")
	}

	var (
		cfg *config.Config
		err error
	)
	if SharedFlags.ConfigFile != "" {
		cfg, err = config.LoadConfigFile(SharedFlags.ConfigFile)
	} else {
		cfg, err = config.InitializeConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ApplyFlagOverrides(cfg, SharedFlags)
	AppConfig = cfg
	Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))

	Log.Debug("Configuration loaded",
		logging.Field{Key: logging.FieldModelPath, Value: cfg.Model.Path},
		logging.Field{Key: "log_level", Value: cfg.Log.Level})
	return nil
}

// ApplyFlagOverrides copies explicitly set command-line flags over cfg.
func ApplyFlagOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.ModelPath != "" {
		cfg.Model.Path = flags.ModelPath
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
}

// NewContainer loads the model and wires the services for a subcommand.
func NewContainer() (*container.Container, error) {
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return container.NewContainerWithLogger(AppConfig, Log)
}
