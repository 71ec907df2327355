package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vextm/tm-bridge/internal/api/httpapi"
	"github.com/vextm/tm-bridge/internal/config"
	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/service/bridge"
	"github.com/vextm/tm-bridge/internal/service/roster"
	"github.com/vextm/tm-bridge/internal/surface"
)

// Options controls the tm-bridge process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the
	// HTTP server.
	ListenAddress string
}

const (
	// readHeaderTimeout bounds header parsing on inbound connections.
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout bounds draining of inbound connections on stop.
	shutdownTimeout = 10 * time.Second
)

// Run starts the bridge and blocks until the context is canceled or the HTTP
// server stops. Loads configuration first, then wires the agent client, the
// engine and the HTTP surface together.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "tm-bridge")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// CLI argument overrides the configured listen address.
	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	// Competition is validated during config load.
	competition, err := field.ParseCompetition(settings.Competition)
	if err != nil {
		return fmt.Errorf("parse competition: %w", err)
	}

	agent, err := surface.NewAgentClient(
		settings.AgentEndpoint,
		surface.WithCallTimeout(settings.Timeout),
	)
	if err != nil {
		return fmt.Errorf("create agent client: %w", err)
	}

	defer agent.Close()

	engine := bridge.NewEngine(agent, bridge.Config{
		Competition:      competition,
		PollInterval:     settings.PollInterval,
		IdlePollInterval: settings.IdlePollInterval,
		BackoffCeiling:   settings.BackoffCeiling,
		FailureThreshold: settings.FailureThreshold,
		ConfirmInterval:  settings.ConfirmInterval,
		ConfirmTimeout:   settings.ConfirmTimeout,
		SubscriberBuffer: settings.SubscriberBuffer,
	})

	// The roster scraper is optional; without a Tournament Manager web
	// server address its endpoints report the feature as disabled.
	var rosterClient *roster.Client

	if settings.TMAddress != "" {
		rosterClient, err = roster.NewClient(settings.TMAddress, roster.WithCallTimeout(settings.Timeout))
		if err != nil {
			return fmt.Errorf("create roster client: %w", err)
		}
	}

	api := httpapi.NewServer(engine, rosterClient, competition)

	httpServer := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	logger.InfoKV(ctx, "Bridge listening",
		"listen_address", listenAddress,
		"agent_endpoint", settings.AgentEndpoint,
		"competition", competition)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until in-flight requests drain before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down bridge")

		// Stop the engine first: closing subscriptions ends the SSE
		// streams, which lets the HTTP server drain.
		engine.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf(ctx, "Failed to shut down HTTP server: %v", err)
		}

		close(done)
	}()

	if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "Bridge stopped")

	return nil
}
