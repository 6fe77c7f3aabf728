package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/daemon"
	"github.com/agentpad/mcphub/internal/flags"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Dev       bool
	Addr      string
	cfgLoader config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCmd := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches an 'mcphub' daemon instance",
		Long:  "Launches an 'mcphub' daemon instance, which starts MCP servers and provides routing via HTTP API",
		RunE:  c.run,
	}

	cobraCmd.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCmd.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCmd.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCmd
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
func (c *DaemonCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		devAddr := "localhost:8090"
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	d, err := daemon.NewDaemon(logger, c.cfgLoader, flags.ConfigFile, c.CreateRegistry(), addr)
	if err != nil {
		return fmt.Errorf("failed to create mcphub daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	if c.Dev {
		banner := fmt.Sprintf("mcphub daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		fmt.Print(banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		return <-runErr // Wait for cleanup and deferred logging.
	case err := <-runErr:
		return err
	}
}
