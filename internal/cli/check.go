package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	syncmod "leadsync/internal/services/sync/module"

	"github.com/spf13/cobra"
)

type checkOutput struct {
	Options syncmod.Options `json:"options"`
	Source  string          `json:"catalog"`
	Metrics []checkMetric   `json:"metrics"`
}

type checkMetric struct {
	Name       string `json:"name"`
	Cell       string `json:"cell"`
	Pagination string `json:"pagination"`
	PageSize   int    `json:"page_size"`
}

func newCheckCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and the metric catalog without calling Close or Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, cat, err := syncmod.Load(deps(), f.overrides())
			if err != nil {
				return err
			}

			out := checkOutput{Options: opts.Redacted(), Source: cat.Source}
			for _, m := range cat.Metrics() {
				out.Metrics = append(out.Metrics, checkMetric{
					Name:       m.Name,
					Cell:       m.Cell,
					Pagination: m.Query.Strategy.String(),
					PageSize:   m.Query.PageSize,
				})
			}

			w := cmd.OutOrStdout()
			if f.json() {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			_, _ = fmt.Fprintf(w, "configuration ok, catalog %s, dry run %t\n\n", out.Source, opts.DryRun)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "METRIC\tCELL\tPAGINATION\tPAGE SIZE")
			for _, m := range out.Metrics {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.Name, m.Cell, m.Pagination, m.PageSize)
			}
			return tw.Flush()
		},
	}
}
