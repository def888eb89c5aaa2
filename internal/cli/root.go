package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPaths []string
	EnvFile     string
	Host        string
	Port        int
	LogLevel    string
}

// NewRootCommand builds the riskmcp command tree.
func NewRootCommand() *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:           "riskmcp",
		Short:         "Session-oriented MCP tool server over SSE",
		Long:          "riskmcp serves calculation, embedding and property risk tools to MCP clients over Server-Sent Events.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(flags.EnvFile, cmd.Flags().Changed("env-file"))
		},
	}

	pf := root.PersistentFlags()
	pf.StringSliceVar(&flags.ConfigPaths, "config", nil, "TOML config file (repeatable, later files override earlier)")
	pf.StringVar(&flags.EnvFile, "env-file", ".env", "dotenv file loaded before configuration")
	pf.StringVar(&flags.Host, "host", "", "listen host (overrides config)")
	pf.IntVar(&flags.Port, "port", 0, "listen port (overrides config)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newToolsCommand(flags))
	root.AddCommand(newVersionCommand())

	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}
