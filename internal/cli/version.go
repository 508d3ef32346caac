package cli

import (
	"encoding/json"
	"fmt"

	"leadsync/internal/core/version"

	"github.com/spf13/cobra"
)

func newVersionCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bi := version.Info()
			if f.json() {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(bi)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), bi.String())
			return nil
		},
	}
}
