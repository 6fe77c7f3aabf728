package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/flags"
)

// DisableCmd should be used to represent the 'disable' command.
type DisableCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewDisableCmd creates a newly configured (Cobra) command.
func NewDisableCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &DisableCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "disable <server-name>",
		Short: "Disables a declared MCP server without removing it",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

// run is configured (via NewDisableCmd) to be called by the Cobra framework when the command is executed.
func (c *DisableCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.DisableServer(name); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Disabled server '%s'\n", name)
	return nil
}
