package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wagiedev/riskmcp/internal/config"
	"github.com/wagiedev/riskmcp/internal/protocol"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (protocol %s)\n",
				config.DefaultServerName, config.DefaultServerVersion, protocol.LatestProtocolVersion)

			return err
		},
	}
}
