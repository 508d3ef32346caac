package cli

import (
	"os"
	"os/signal"
	"syscall"

	modreg "leadsync/internal/modkit/module"
	"leadsync/internal/services/sync/domain"
	statusmod "leadsync/internal/services/status/module"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newScheduleCmd(f *flags) *cobra.Command {
	var statusAddr string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run sync on a cron schedule until interrupted",
		Long:  "Run sync on a cron schedule until SIGINT or SIGTERM. When a status address is configured the last run is served at /status/last-run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := buildSync(ctx, f)
			if err != nil {
				return err
			}
			sched := modreg.MustPortsOf[domain.SchedulerPort](m)

			d := deps()
			status := statusmod.New(d, modreg.MustPortsOf[domain.ReporterPort](m), statusmod.Options{Addr: statusAddr})
			modreg.Register(status.Name(), status.Ports())
			log := d.Component("cli")
			log.Info().Strs("modules", modreg.Names()).Bool("status", status.Options().Enabled()).Msg("schedule mode")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return sched.Run(gctx) })
			g.Go(func() error { return status.Run(gctx) })
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "status server listen address (env STATUS_ADDR)")
	return cmd
}
