package cmd

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/cmd/output"
	"github.com/agentpad/mcphub/internal/diagnose"
	"github.com/agentpad/mcphub/internal/runtime"
)

// DiagnoseCmd should be used to represent the 'diagnose' command.
type DiagnoseCmd struct {
	*cmd.BaseCmd
	Format string
}

// NewDiagnoseCmd creates a newly configured (Cobra) command.
func NewDiagnoseCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &DiagnoseCmd{
		BaseCmd: baseCmd,
	}

	cobraCmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Checks the host for MCP server runtimes and reports hub state",
		RunE:  c.run,
	}

	cobraCmd.Flags().StringVar(
		&c.Format,
		"format",
		string(output.FormatText),
		fmt.Sprintf("output format, one of: %v", output.AllowedFormats()),
	)

	return cobraCmd
}

func (c *DiagnoseCmd) run(cobraCmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	logger := c.Logger()
	doctor := diagnose.NewDoctor(
		logger,
		runtime.NewResolver(logger, exec.LookPath),
		c.CreateRegistry(),
		nil, // no running daemon to inspect from the CLI
		nil,
	)

	handler := output.NewHandler(cobraCmd.OutOrStdout(), format, diagnoseReportText)
	return handler.HandleResult(doctor.Run())
}

func diagnoseReportText(w io.Writer, report diagnose.Report) error {
	fmt.Fprintln(w, "Runtimes:")
	for _, rt := range report.Runtimes {
		if rt.Available {
			fmt.Fprintf(w, "  ✓ %s (%s)\n", rt.Name, rt.Path)
		} else {
			fmt.Fprintf(w, "  ✗ %s not found (%s)\n", rt.Name, rt.Hint)
		}
	}

	fmt.Fprintf(w, "\nRegistry:\n  source: %s\n  version: %s\n  packages: %d\n",
		report.RegistrySource, report.RegistryVersion, report.RegistryPackages)

	if len(report.ConnectedServers) > 0 {
		fmt.Fprintf(w, "\nConnected servers: %v\n", report.ConnectedServers)
	}
	if len(report.UnhealthyServers) > 0 {
		fmt.Fprintf(w, "\nUnhealthy servers: %v\n", report.UnhealthyServers)
	}

	if !report.Healthy() {
		fmt.Fprintln(w, "\nNo package runner found: install Node.js (npx) or uv (uvx) to run stdio servers.")
	}
	return nil
}
