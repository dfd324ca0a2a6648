package pipeline

import (
	"github.com/pable/go-load-metrics/internal/logger"
	"github.com/pable/go-load-metrics/internal/metrics"
	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/normalize"
)

type settings struct {
	team    string
	marker  string
	groupBy model.GroupBy
	policy  model.SingletonPolicy
	log     logger.Logger
	metrics *metrics.Pipeline
}

func defaults() settings {
	return settings{
		marker:  normalize.DefaultMarker,
		groupBy: model.GroupByPosition,
		policy:  model.SingletonPreserve,
		log:     logger.Nop(),
	}
}

// Option configures Run.
type Option func(*settings)

// WithTeam sets the team kept by the normalizer.
func WithTeam(team string) Option {
	return func(s *settings) { s.team = team }
}

// WithMarker sets the match-day label marker token.
func WithMarker(marker string) Option {
	return func(s *settings) {
		if marker != "" {
			s.marker = marker
		}
	}
}

// WithGroupBy sets the second reference grouping column.
func WithGroupBy(by model.GroupBy) Option {
	return func(s *settings) {
		if by != "" {
			s.groupBy = by
		}
	}
}

// WithSingletonPolicy sets how deduplication treats single-entry days.
func WithSingletonPolicy(p model.SingletonPolicy) Option {
	return func(s *settings) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithLogger sets the logger used for stage summaries.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the counters updated by the run.
func WithMetrics(m *metrics.Pipeline) Option {
	return func(s *settings) { s.metrics = m }
}
