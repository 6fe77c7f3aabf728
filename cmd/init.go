package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/flags"
)

// InitCmd should be used to represent the 'init' command.
type InitCmd struct {
	*cmd.BaseCmd
	cfgInit config.Initializer
}

// NewInitCmd creates a newly configured (Cobra) command.
func NewInitCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &InitCmd{
		BaseCmd: baseCmd,
		cfgInit: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "init",
		Short: "Creates a skeleton configuration file",
		RunE:  c.run,
	}
}

func (c *InitCmd) run(cobraCmd *cobra.Command, _ []string) error {
	if err := c.cfgInit.Init(flags.ConfigFile); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "Created %s\n", flags.ConfigFile)
	return nil
}
