package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentpad/mcphub/internal/cmd"
	"github.com/agentpad/mcphub/internal/config"
	"github.com/agentpad/mcphub/internal/domain"
	"github.com/agentpad/mcphub/internal/flags"
	"github.com/agentpad/mcphub/internal/security"
)

// AddCmd should be used to represent the 'add' command.
type AddCmd struct {
	*cmd.BaseCmd
	Transport string
	Command   string
	Args      []string
	Env       []string
	URL       string
	Headers   []string
	cfgLoader config.Loader
}

// NewAddCmd creates a newly configured (Cobra) command.
func NewAddCmd(baseCmd *cmd.BaseCmd) *cobra.Command {
	c := &AddCmd{
		BaseCmd:   baseCmd,
		cfgLoader: &config.DefaultLoader{},
	}

	cobraCmd := &cobra.Command{
		Use:   "add <server-name>",
		Short: "Adds an MCP server declaration to the config file",
		Long:  c.longDescription(),
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}

	cobraCmd.Flags().StringVar(
		&c.Transport,
		"transport",
		string(domain.TransportStdio),
		fmt.Sprintf("transport for the server (%s, %s or %s)",
			domain.TransportStdio, domain.TransportHTTP, domain.TransportSSE),
	)

	cobraCmd.Flags().StringVar(
		&c.Command,
		"command",
		"",
		"executable that launches a stdio server (e.g. npx)",
	)

	cobraCmd.Flags().StringArrayVar(
		&c.Args,
		"arg",
		nil,
		"argument passed to the launch command (can be repeated)",
	)

	cobraCmd.Flags().StringArrayVar(
		&c.Env,
		"env",
		nil,
		"environment variable for the server as KEY=VALUE (can be repeated)",
	)

	cobraCmd.Flags().StringVar(
		&c.URL,
		"url",
		"",
		"endpoint URL for http and sse servers",
	)

	cobraCmd.Flags().StringArrayVar(
		&c.Headers,
		"header",
		nil,
		"request header for http and sse servers as KEY=VALUE (can be repeated)",
	)

	return cobraCmd
}

// longDescription returns the long version of the command description.
func (c *AddCmd) longDescription() string {
	return `Adds an MCP server declaration to the config file.
Stdio launch commands are checked against the security rules before the
declaration is persisted, so a server that would be rejected at launch
time is rejected here too.`
}

// run is configured (via NewAddCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *AddCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}

	env, err := parsePairs(c.Env, "env")
	if err != nil {
		return err
	}
	headers, err := parsePairs(c.Headers, "header")
	if err != nil {
		return err
	}

	entry := config.ServerEntry{
		Name:      name,
		Transport: strings.ToLower(strings.TrimSpace(c.Transport)),
		Command:   strings.TrimSpace(c.Command),
		Args:      c.Args,
		Env:       env,
		URL:       strings.TrimSpace(c.URL),
		Headers:   headers,
	}

	if err := entry.ServerConfig().Validate(); err != nil {
		return err
	}

	if entry.Transport == string(domain.TransportStdio) {
		verdict := security.NewValidator(c.Logger()).Validate(entry.Command, entry.Args, security.ModeRuntime)
		if !verdict.Allowed {
			return fmt.Errorf("launch command rejected: %s", verdict.Reason)
		}
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.AddServer(entry); err != nil {
		return err
	}

	fmt.Fprintf(cobraCmd.OutOrStdout(), "✓ Added server '%s'\n", name)
	return nil
}

// parsePairs converts repeated KEY=VALUE flag values into a map.
func parsePairs(pairs []string, flagName string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --%s value '%s', expected KEY=VALUE", flagName, pair)
		}
		out[key] = value
	}
	return out, nil
}
