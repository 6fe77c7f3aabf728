package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/flags"
	"github.com/agentpad/mcphub/internal/security"
)

// ImportCmd should be used to represent the 'import' command.
type ImportCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewImportCmd creates a newly configured (Cobra) command.
func NewImportCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &ImportCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	return &cobra.Command{
		Use:   "import <path>",
		Short: "Imports server declarations from another MCP client's config file",
		Long: "Imports server declarations from another MCP client's config file " +
			"(JSON or YAML documents with an 'mcpServers' section)",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}
}

func (c *ImportCmd) run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	importer := config.NewImporter(security.NewValidator(c.Logger()))
	report, err := importer.ImportFile(cfg, args[0])
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()
	for _, name := range report.Added {
		fmt.Fprintf(out, "✓ Imported server '%s'\n", name)
	}

	skipped := make([]string, 0, len(report.Skipped))
	for name := range report.Skipped {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		fmt.Fprintf(out, "✗ Skipped server '%s': %s\n", name, report.Skipped[name])
	}

	fmt.Fprintf(out, "Imported %d server(s), skipped %d\n", len(report.Added), len(report.Skipped))
	return nil
}
