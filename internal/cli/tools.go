package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wagiedev/riskmcp"
)

func newToolsCommand(flags *GlobalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			srv, err := BuildServer(cfg, riskmcp.NopLogger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(map[string]any{"tools": srv.Tools()})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, tool := range srv.Tools() {
				fmt.Fprintf(tw, "%s\t%s\n", tool.Name, tool.Description)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as a tools/list result")

	return cmd
}
