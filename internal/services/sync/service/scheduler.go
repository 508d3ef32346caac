package service

import (
	"context"
	"strings"

	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs every fifteen minutes
const DefaultSchedule = "*/15 * * * *"

// cronLogger adapts the zerolog root to cron.Logger
type cronLogger struct{ l logger.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug().Fields(kv).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error().Err(err).Fields(kv).Msg("cron: " + msg)
}

// ParseSchedule validates a cron spec and returns it trimmed
func ParseSchedule(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeConfig, "invalid schedule %q", spec)
	}
	return spec, nil
}

// Run triggers RunOnce on the configured schedule until ctx is done.
// A run still in flight when the next tick arrives causes that tick to be skipped
func (s *Svc) Run(ctx context.Context) error {
	spec, err := ParseSchedule(s.config.Schedule)
	if err != nil {
		return err
	}

	cl := cronLogger{l: s.log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(spec, func() {
		rep, err := s.RunOnce(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("scheduled run ended early")
			return
		}
		s.log.Info().Str("run_id", rep.RunID).Interface("counts", rep.Counts()).Msg("scheduled run finished")
	}); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "invalid schedule %q", spec)
	}

	c.Start()
	s.log.Info().Str("schedule", spec).Msg("scheduler started")

	<-ctx.Done()
	// wait for an in-flight run to observe cancellation and finish
	<-c.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}
