package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/flags"
)

// RemoveCmd should be used to represent the 'remove' command.
type RemoveCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewRemoveCmd creates a newly configured (Cobra) command.
func NewRemoveCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &RemoveCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "remove <server-name>",
		Short: "Removes an MCP server declaration from the config file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

// run is configured (via NewRemoveCmd) to be called by the Cobra framework when the command is executed.
func (c *RemoveCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.RemoveServer(name); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Removed server '%s'\n", name)
	return nil
}
