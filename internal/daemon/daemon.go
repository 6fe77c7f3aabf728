// Package daemon wires the hub together: it loads the configuration,
// launches the enabled MCP servers, runs the health monitor, and serves the
// HTTP API until the context is canceled.
package daemon

import (
	"context"
	"fmt"
	"os/exec"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/agentpad/mcphub/internal/api"
	"github.com/agentpad/mcphub/internal/bridge"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/connection"
	"github.com/agentpad/mcphub/internal/contracts"
	"github.com/agentpad/mcphub/internal/diagnose"
	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/health"
	"github.com/agentpad/mcphub/internal/registry"
	"github.com/agentpad/mcphub/internal/runtime"
	"github.com/agentpad/mcphub/internal/security"
)

// startupFanout bounds concurrent server launches at daemon start.
const startupFanout = 4

// Daemon owns the long-running hub process.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	cfgLoader config.Loader
	cfgPath   string
	registry  *registry.Registry
	conns     *connection.Manager
	monitor   *health.Monitor
	apiAddr   string
	options   Options
}

// NewDaemon assembles the connection manager and health monitor around the
// supplied configuration loader and registry.
func NewDaemon(
	logger hclog.Logger,
	cfgLoader config.Loader,
	cfgPath string,
	reg *registry.Registry,
	apiAddr string,
	opt ...Option,
) (*Daemon, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfgLoader == nil || reflect.ValueOf(cfgLoader).IsNil() {
		return nil, fmt.Errorf("config loader cannot be nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	options, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	resolver := runtime.NewResolver(logger, exec.LookPath)
	conns := connection.NewManager(
		logger,
		security.NewValidator(logger),
		connection.NewFactory(logger, resolver),
		reg,
		connection.WithConnectTimeout(options.ConnectTimeout),
	)

	return &Daemon{
		logger:    logger.Named("daemon"),
		cfgLoader: cfgLoader,
		cfgPath:   cfgPath,
		registry:  reg,
		conns:     conns,
		monitor:   health.NewMonitor(logger),
		apiAddr:   apiAddr,
		options:   options,
	}, nil
}

// StartAndManage runs the daemon until the context is canceled: it connects
// every enabled server, starts the health sweeper and the API server, and
// tears all connections down on the way out.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	cfg, err := d.cfgLoader.Load(d.cfgPath)
	if err != nil {
		return err
	}

	enabled, disabled := cfg.LoadConfiguration()
	d.logger.Info("Loaded configuration", "enabled", len(enabled), "disabled", len(disabled))

	d.launchServers(ctx, enabled)

	resolver := runtime.NewResolver(d.logger, exec.LookPath)
	deps := api.Dependencies{
		Connections: d.conns,
		Health:      d.monitor,
		Bridge:      bridge.NewBridge(d.logger, d.conns, d.monitor, cfg),
		Doctor:      diagnose.NewDoctor(d.logger, resolver, d.registry, d.conns, d.monitor),
		Registry:    d.registry,
	}

	apiServer, err := NewAPIServer(d.logger, deps, d.apiAddr, d.options.APIOptions...)
	if err != nil {
		return fmt.Errorf("failed to create daemon API server: %w", err)
	}

	go d.monitor.Start(ctx)

	err = apiServer.Start(ctx)

	d.shutdown()

	if err != nil && ctx.Err() != nil {
		// Normal shutdown path: surface the cancellation, not the server error.
		return nil
	}
	return err
}

// launchServers connects the enabled servers with bounded fan-out. A failed
// launch is logged and skipped so one broken server never blocks the rest.
func (d *Daemon) launchServers(ctx context.Context, enabled map[string]domain.ServerConfig) {
	if len(enabled) == 0 {
		d.logger.Warn("No enabled servers configured")
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(startupFanout)
	for id, serverCfg := range enabled {
		g.Go(func() error {
			if err := d.conns.Connect(ctx, serverCfg); err != nil {
				d.logger.Error("Failed to launch server", "server", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Info("Server launch complete", "connected", len(d.conns.ConnectedServers()))
}

// shutdown closes every live connection within the shutdown timeout.
func (d *Daemon) shutdown() {
	d.logger.Info("Disconnecting all servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.options.ShutdownTimeout)
	defer cancel()
	d.conns.DisconnectAll(shutdownCtx)
	d.logger.Info("All servers disconnected")
}

// Connections exposes the live connection manager, mainly for tests.
func (d *Daemon) Connections() contracts.ConnectionManager {
	return d.conns
}
