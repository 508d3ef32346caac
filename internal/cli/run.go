package cli

import (
	"context"

	modreg "leadsync/internal/modkit/module"
	perr "leadsync/internal/platform/errors"
	"leadsync/internal/services/sync/domain"
	syncmod "leadsync/internal/services/sync/module"

	"github.com/spf13/cobra"
)

func newRunCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every metric once and write the counts",
		Long:  "Run every enabled metric once. Exits 0 when all metrics succeeded, 3 when some failed and 1 when none succeeded or the configuration is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildSync(cmd.Context(), f)
			if err != nil {
				return err
			}
			ports, ok := modreg.PortsAs[syncmod.Ports](m.Name())
			if !ok || ports.Runner == nil {
				return perr.Newf(perr.ErrorCodeConfig, "module %s registered without a runner", m.Name())
			}
			rep, err := ports.Runner.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), rep, f.json()); err != nil {
				return err
			}
			return statusErr(rep)
		},
	}
}

// buildSync constructs the sync module and registers its ports
func buildSync(ctx context.Context, f *flags) (*syncmod.Module, error) {
	m, err := syncmod.New(ctx, deps(), f.overrides())
	if err != nil {
		return nil, err
	}
	modreg.Register(m.Name(), m.Ports())
	return m, nil
}

// statusErr maps a run status to the process exit code
func statusErr(rep domain.Report) error {
	switch rep.Status {
	case domain.StatusOK:
		return nil
	case domain.StatusPartial:
		return &exitError{code: ExitPartial, err: perr.Newf(perr.ErrorCodeQuery, "run %s finished partially", rep.RunID)}
	default:
		return &exitError{code: ExitFailed, err: perr.Newf(perr.ErrorCodeQuery, "run %s failed", rep.RunID)}
	}
}
