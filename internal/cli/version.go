package cli

import (
	"fmt"

	"github.com/fmueller/vidtranslate/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "vidtranslate v%s (commit %s, built %s)\n", version.Resolve(), version.Commit, version.Date)
			return nil
		},
	}
}
