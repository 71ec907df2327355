package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vextm/tm-bridge/internal/config"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/service/server"
	"github.com/vextm/tm-bridge/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel for the process-wide logger.
	logLevel string

	// rootCmd represents the base command for running the bridge.
	rootCmd = &cobra.Command{
		Use:   "tm-bridge [listen-address]",
		Short: "Run the Tournament Manager field bridge.",
		Long: `Starts the HTTP bridge that exposes Tournament Manager match field sets.

The bridge polls each referenced field set through the control surface agent,
publishes observed state transitions as server-sent events and accepts field
control commands over the HTTP API.
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the tm-bridge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error, fatal)")
}
