// Package cli implements the leadsync command line
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"leadsync/internal/modkit"
	"leadsync/internal/platform/config"
	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"
	syncmod "leadsync/internal/services/sync/module"

	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitPartial = 3
)

// exitError carries a process exit code through cobra
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// flags shared by every command; they override env
type flags struct {
	metrics     string
	dryRun      bool
	concurrency int
	schedule    string
	output      string
}

func (f *flags) overrides() syncmod.Options {
	return syncmod.Options{
		MetricsFile: f.metrics,
		DryRun:      f.dryRun,
		Concurrency: f.concurrency,
		Schedule:    f.schedule,
	}
}

func (f *flags) json() bool { return f.output == "json" }

func deps() modkit.Deps {
	return modkit.Deps{Log: *logger.Get(), Cfg: config.New()}
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	printErr(stderr, err)
	var xe *exitError
	if errors.As(err, &xe) {
		return xe.code
	}
	return ExitFailed
}

func printErr(w io.Writer, err error) {
	label := "Error"
	if perr.Fatal(err) {
		label = "Configuration error"
	}
	if e, ok := perr.As(err); ok {
		if f := e.Field(); f != "" {
			_, _ = fmt.Fprintf(w, "%s: %s: %s (%s)\n", label, e.Code(), err.Error(), f)
			return
		}
		_, _ = fmt.Fprintf(w, "%s: %s: %s\n", label, e.Code(), err.Error())
		return
	}
	_, _ = fmt.Fprintf(w, "%s: %v\n", label, err)
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "leadsync",
		Short:         "Count Close leads and write the totals to Google Sheets",
		Long:          "leadsync runs a catalog of Close lead searches, counts every matching lead across all result pages and writes each total to a spreadsheet cell.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch f.output {
			case "text", "json":
			default:
				return perr.InvalidArgf("unknown output format %q", f.output)
			}
			if cmd.Flags().Changed("concurrency") && f.concurrency < 1 {
				return perr.InvalidArgf("--concurrency must be at least 1")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.metrics, "metrics", "", "metric catalog YAML file (env LEADSYNC_METRICS_FILE)")
	pf.BoolVar(&f.dryRun, "dry-run", false, "count but do not write to the sheet (env LEADSYNC_DRYRUN)")
	pf.IntVar(&f.concurrency, "concurrency", 0, "metrics aggregated at once (env LEADSYNC_CONCURRENCY)")
	pf.StringVar(&f.schedule, "schedule", "", "cron spec for schedule mode (env LEADSYNC_SCHEDULE)")
	output := config.New().Prefix("LEADSYNC_").MayEnum("OUTPUT", "text", "text", "json")
	pf.StringVarP(&f.output, "output", "o", output, "output format: text or json (env LEADSYNC_OUTPUT)")

	root.AddCommand(
		newRunCmd(f),
		newScheduleCmd(f),
		newCheckCmd(f),
		newVersionCmd(f),
	)
	return root
}
