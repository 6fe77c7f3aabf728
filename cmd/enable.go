package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/flags"
)

// EnableCmd should be used to represent the 'enable' command.
type EnableCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewEnableCmd creates a newly configured (Cobra) command.
func NewEnableCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &EnableCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "enable <server-name>",
		Short: "Enables a declared MCP server so the daemon launches it",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

// run is configured (via NewEnableCmd) to be called by the Cobra framework when the command is executed.
func (c *EnableCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.EnableServer(name); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Enabled server '%s'\n", name)
	return nil
}
