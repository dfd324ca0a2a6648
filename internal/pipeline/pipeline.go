// Package pipeline runs the fatigue stages in order over one decoded table:
// normalize, deduplicate, score.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pable/go-load-metrics/internal/dedupe"
	"github.com/pable/go-load-metrics/internal/logger"
	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/normalize"
	"github.com/pable/go-load-metrics/internal/scoring"
)

// Run turns raw into the scored output table. It keeps no state between calls.
// ctx is checked between stages.
func Run(ctx context.Context, raw *model.RawTable, opts ...Option) (*model.ScoredTable, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil RawTable")
	}
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	load := raw.LoadIndex()
	if load < 0 {
		return nil, fmt.Errorf("load metric %q not among metrics", raw.Load)
	}
	start := time.Now()
	log := s.log.With(logger.String("source", raw.Source))

	// ---- Stage 1: team filter, match-day category, date. ----

	sessions, err := normalize.New(s.team, s.marker).Normalize(raw.Records)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	s.metrics.RowsIngested(len(raw.Records))
	s.metrics.RowsFiltered(len(raw.Records) - len(sessions))
	log.Debug(ctx, "normalized",
		logger.Int("rows_in", len(raw.Records)),
		logger.Int("rows_kept", len(sessions)),
		logger.String("team", s.team))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ---- Stage 2: one canonical session per player and day. ----

	sessions, rep := dedupe.Canonicalize(sessions, load, s.policy)
	s.metrics.RowsDeduplicated(rep.Removed())
	s.metrics.SingletonGroups("preserved", rep.SingletonsPreserved)
	s.metrics.SingletonGroups("dropped", rep.SingletonsDropped)
	log.Debug(ctx, "deduplicated",
		logger.Int("groups", rep.Groups),
		logger.Int("removed", rep.Removed()),
		logger.Int("singletons", rep.Singletons))
	if rep.SingletonsDropped > 0 {
		log.Warn(ctx, "single-entry days dropped by legacy policy",
			logger.Int("groups", rep.SingletonsDropped))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ---- Stage 3: reference statistics, indicators, fatigue. ----

	rows, srep := scoring.Score(sessions, raw.Metrics, s.groupBy)
	for metric, n := range srep.DegenerateGroups {
		s.metrics.DegenerateGroups(metric, n)
	}
	s.metrics.RowsScored(len(rows))
	s.metrics.ObserveRun(time.Since(start))

	log.Info(ctx, "scored",
		logger.Int("rows", len(rows)),
		logger.Int("metrics", len(raw.Metrics)),
		logger.Int("groups", srep.Groups),
		logger.String("group_by", s.groupBy.String()),
		logger.Any("elapsed", time.Since(start)))

	return &model.ScoredTable{
		Source:  raw.Source,
		Hash:    raw.Hash,
		Team:    s.team,
		GroupBy: s.groupBy,
		Metrics: append([]string(nil), raw.Metrics...),
		Load:    raw.Load,
		Rows:    rows,
	}, nil
}
