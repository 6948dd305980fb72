// Package serve runs the HTTP classification service.
package serve

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/txn-classifier/cmd/root"
	"fjacquet/txn-classifier/internal/api"
	"fjacquet/txn-classifier/internal/config"
	"fjacquet/txn-classifier/internal/container"
	"fjacquet/txn-classifier/internal/logging"

	"github.com/spf13/cobra"
)

var (
	host string
	port int
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP classification service",
	Long: `Load the model artifact and serve the prediction and anomaly detection API.

The model is loaded once at startup; the command exits with an error if it
cannot be loaded. SIGINT and SIGTERM trigger a graceful shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := root.AppConfig
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = host
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}

		c, err := root.NewContainer()
		if err != nil {
			root.Log.WithError(err).Error("Service startup aborted")
			return err
		}
		defer func() { _ = c.Close() }()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return NewServer(c).ListenAndServe(ctx)
	},
}

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
}

// NewServer builds the HTTP server around the container's services.
func NewServer(c *container.Container) *api.Server {
	cfg := c.GetConfig()
	logger := c.GetLogger()

	handler := api.NewHandler(c.GetEngine(), c.GetDetector(), api.HandlerConfig{
		ServiceVersion:       cfg.Server.Version,
		ModelVersion:         c.GetBundle().Version(),
		DefaultContamination: cfg.Anomaly.Contamination,
	})

	logger.Info("Service configured",
		logging.Field{Key: "addr", Value: cfg.Addr()},
		logging.Field{Key: logging.FieldModelVersion, Value: c.GetBundle().Version()},
		logging.Field{Key: "allowed_origins", Value: cfg.Server.AllowedOrigins})

	return api.NewServer(serverConfig(cfg, api.NewRouter(handler, cfg.Server.AllowedOrigins, logger)), logger)
}

func serverConfig(cfg *config.Config, h http.Handler) api.ServerConfig {
	return api.ServerConfig{
		Addr:            cfg.Addr(),
		Handler:         h,
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
	}
}
