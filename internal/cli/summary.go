package cli

import (
	"encoding/json"
	"io"
	"text/tabwriter"
	"time"

	"leadsync/internal/services/sync/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// writeReport prints rep as indented JSON or as a human summary with grouped counts
func writeReport(w io.Writer, rep domain.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	p := message.NewPrinter(language.English)
	mode := ""
	if rep.DryRun {
		mode = " (dry run)"
	}
	_, _ = p.Fprintf(w, "run %s %s%s in %v\n\n", rep.RunID, rep.Status, mode, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, _ = p.Fprintf(tw, "METRIC\tCELL\tCOUNT\tPAGES\tOUTCOME\t\n")
	for _, m := range rep.Metrics {
		count := "-"
		if m.Outcome.Succeeded() {
			count = p.Sprintf("%d", m.Count)
		}
		_, _ = p.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t\n", m.Name, m.Cell, count, m.Pages, m.Outcome)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, m := range rep.Metrics {
		if m.Error != nil {
			_, _ = p.Fprintf(w, "  %s: %s\n", m.Name, m.Error.Message)
		}
	}
	if rep.History != nil {
		_, _ = p.Fprintf(w, "  history: %s\n", rep.History.Message)
	}
	return nil
}
