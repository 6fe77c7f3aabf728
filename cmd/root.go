package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/flags"
)

// RootCmd anchors the CLI command tree.
type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the command tree and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the fully wired root (Cobra) command.
func NewRootCmd() *cobra.Command {
	c := &RootCmd{
		BaseCmd: &cmd.BaseCmd{},
	}

	rootCmd := &cobra.Command{
		Use:          "mcphub <command> [args]",
		Short:        "'mcphub' manages and serves local MCP tool providers.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewInitCmd(c.BaseCmd))
	rootCmd.AddCommand(NewDaemonCmd(c.BaseCmd))
	rootCmd.AddCommand(NewValidateCmd(c.BaseCmd))
	rootCmd.AddCommand(NewDiagnoseCmd(c.BaseCmd))
	rootCmd.AddCommand(NewImportCmd(c.BaseCmd))
	rootCmd.AddCommand(NewAddCmd(c.BaseCmd))
	rootCmd.AddCommand(NewRemoveCmd(c.BaseCmd))
	rootCmd.AddCommand(NewEnableCmd(c.BaseCmd))
	rootCmd.AddCommand(NewDisableCmd(c.BaseCmd))

	return rootCmd
}

func (c *RootCmd) longDescription() string {
	return `The 'mcphub' CLI launches and supervises MCP tool provider servers,
validates their launch commands, and exposes every discovered tool through
one local HTTP API.`
}
