package service

import (
	"context"
	"time"

	perr "leadsync/internal/platform/errors"
	"leadsync/internal/platform/logger"
	"leadsync/internal/services/sync/domain"

	"golang.org/x/sync/errgroup"
)

// RunOnce aggregates every catalog metric and writes each count to its cell.
// A failed metric never blocks the others; the error return is reserved for a canceled run
func (s *Svc) RunOnce(ctx context.Context) (domain.Report, error) {
	metrics := s.catalog.Metrics()
	rep := domain.Report{
		RunID:     s.newID(),
		StartedAt: s.now().UTC(),
		DryRun:    s.config.DryRun,
		Metrics:   make([]domain.MetricResult, len(metrics)),
	}
	ctx = logger.WithRun(ctx, rep.RunID)
	log := logger.C(ctx).With().Str("component", "sync").Logger()
	log.Info().Int("metrics", len(metrics)).Bool("dry_run", s.config.DryRun).Int("concurrency", s.config.Concurrency).Msg("sync run started")

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)
	for i, m := range metrics {
		g.Go(func() error {
			// each goroutine owns one slot so report order follows the catalog
			rep.Metrics[i] = s.runMetric(ctx, m)
			return nil
		})
	}
	_ = g.Wait()

	if s.history != nil && s.config.HistoryTab != "" && !s.config.DryRun {
		if err := s.appendHistory(ctx, rep); err != nil {
			log.Error().Err(err).Str("tab", s.config.HistoryTab).Msg("history row append failed")
			w := perr.WireFrom(err)
			rep.History = &w
		}
	}

	rep.FinishedAt = s.now().UTC()
	rep.Status = rep.Summarize()
	s.remember(rep)

	ev := log.Info()
	if rep.Status != domain.StatusOK {
		ev = log.Warn()
	}
	ev.Str("status", string(rep.Status)).Dur("elapsed", rep.FinishedAt.Sub(rep.StartedAt)).Msg("sync run finished")

	if err := ctx.Err(); err != nil {
		return rep, perr.Wrap(err, perr.ErrorCodeUnavailable, "sync run interrupted")
	}
	return rep, nil
}

// runMetric is all or nothing: a count is written only when every page succeeded
func (s *Svc) runMetric(ctx context.Context, m domain.Metric) domain.MetricResult {
	ctx = logger.WithMetric(ctx, m.Name)
	log := logger.C(ctx).With().Str("component", "sync").Str("cell", m.Cell).Logger()
	start := s.now()

	out := domain.MetricResult{Name: m.Name, Cell: m.Cell}
	finish := func(o domain.Outcome, err error) domain.MetricResult {
		out.Outcome = o
		out.Elapsed = s.now().Sub(start)
		out.ElapsedMS = out.Elapsed.Milliseconds()
		if err != nil {
			w := perr.WireFrom(err)
			out.Error = &w
			if e, ok := perr.As(err); ok {
				out.Op = e.Op()
			}
		}
		return out
	}

	res, err := s.agg.Count(ctx, m.Query)
	if err != nil {
		ev := log.Error()
		if perr.Transient(err) {
			ev = log.Warn()
		}
		if e, ok := perr.As(err); ok && e.Op() != "" {
			ev = ev.Str("op", e.Op())
		}
		ev.Err(err).Str("code", perr.CodeOf(err).String()).Msg("metric query failed; cell left untouched")
		return finish(domain.OutcomeQueryFailed, err)
	}
	out.Count = res.Total
	out.Pages = res.Pages

	if s.config.DryRun {
		log.Info().Int("count", res.Total).Int("pages", res.Pages).Msg("dry run; write skipped")
		return finish(domain.OutcomeSkipped, nil)
	}

	if err := s.cells.WriteCell(ctx, m.Cell, res.Total); err != nil {
		log.Error().Err(err).Int("count", res.Total).Msg("metric write failed")
		return finish(domain.OutcomeWriteFailed, err)
	}
	log.Info().Int("count", res.Total).Int("pages", res.Pages).Msg("metric written")
	return finish(domain.OutcomeOK, nil)
}

// appendHistory writes [finished_at, run_id, count_or_blank...] in catalog order
func (s *Svc) appendHistory(ctx context.Context, rep domain.Report) error {
	row := make([]any, 0, len(rep.Metrics)+2)
	row = append(row, s.now().UTC().Format(time.RFC3339), rep.RunID)
	for _, m := range rep.Metrics {
		if m.Outcome.Succeeded() {
			row = append(row, m.Count)
			continue
		}
		row = append(row, "")
	}
	return s.history.AppendRow(ctx, s.config.HistoryTab, row)
}
