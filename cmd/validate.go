package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/cmd/output"
	"github.com/agentpad/mcphub/internal/security"
)

// ValidateCmd should be used to represent the 'validate' command.
type ValidateCmd struct {
	*cmd.BaseCmd
	Mode   string
	Format string
}

// validateResult is the renderable verdict for one launch command.
type validateResult struct {
	Command  string   `json:"command"        yaml:"command"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`
	Mode     string   `json:"mode"           yaml:"mode"`
	Allowed  bool     `json:"allowed"        yaml:"allowed"`
	Reason   string   `json:"reason,omitempty"   yaml:"reason,omitempty"`
	Package  string   `json:"package,omitempty"  yaml:"package,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewValidateCmd creates a newly configured (Cobra) command.
func NewValidateCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &ValidateCmd{
		BaseCmd: baseCmd,
	}

	cobraCmd := &cobra.Command{
		Use:   "validate <command> [args...]",
		Short: "Checks a server launch command against the security rules",
		Long: "Checks a server launch command against the security rules, " +
			"exiting non-zero when the command would be rejected at launch time",
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	// Everything after the command under test belongs to it, including
	// flag-shaped arguments like '-y'.
	cobraCmd.Flags().SetInterspersed(false)

	cobraCmd.Flags().StringVar(
		&c.Mode,
		"mode",
		string(security.ModeRuntime),
		fmt.Sprintf("validation mode (%s or %s)", security.ModeRuntime, security.ModeWhitelist),
	)

	cobraCmd.Flags().StringVar(
		&c.Format,
		"format",
		string(output.FormatText),
		fmt.Sprintf("output format, one of: %v", output.AllowedFormats()),
	)

	return cobraCmd
}

func (c *ValidateCmd) run(cobraCmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	mode := security.Mode(c.Mode)
	switch mode {
	case security.ModeRuntime, security.ModeWhitelist:
	default:
		return fmt.Errorf("unsupported mode '%s' (allowed: %s, %s)", c.Mode, security.ModeRuntime, security.ModeWhitelist)
	}

	validator := security.NewValidator(c.Logger())
	verdict := validator.Validate(args[0], args[1:], mode)

	result := validateResult{
		Command:  args[0],
		Args:     args[1:],
		Mode:     string(mode),
		Allowed:  verdict.Allowed,
		Reason:   verdict.Reason,
		Package:  verdict.Package,
		Warnings: verdict.Warnings,
	}

	handler := output.NewHandler(cobraCmd.OutOrStdout(), format, validateResultText)
	if err := handler.HandleResult(result); err != nil {
		return err
	}

	if !verdict.Allowed {
		return fmt.Errorf("launch command rejected: %s", verdict.Reason)
	}
	return nil
}

func validateResultText(w io.Writer, r validateResult) error {
	if r.Allowed {
		fmt.Fprintf(w, "✓ allowed: %s\n", commandLine(r.Command, r.Args))
		if r.Package != "" {
			fmt.Fprintf(w, "  package: %s\n", r.Package)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
		return nil
	}

	fmt.Fprintf(w, "✗ rejected: %s\n", commandLine(r.Command, r.Args))
	fmt.Fprintf(w, "  reason: %s\n", r.Reason)
	return nil
}

func commandLine(command string, args []string) string {
	line := command
	for _, a := range args {
		line += " " + a
	}
	return line
}
