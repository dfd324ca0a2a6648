// Package scoring classifies each metric value against its group's reference
// aggregates and sums the classifications into a per-session fatigue score.
package scoring

import (
	"math"
	"sort"

	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/stats"
)

// Indicator values.
const (
	AboveMax     = 3
	AboveTwoStd  = 2
	AboveP15     = 1
	Neutral      = 0
	AtOrBelowP15 = -1
)

// Indicator classifies v against a. The first matching branch wins:
//
//	std zero or undefined  -> 0
//	v > max                -> 3
//	v > mean + 2*std       -> 2
//	v > p15                -> 1
//	v <= p15               -> -1
//
// The whole interval (p15, mean+2*std] scores 1 (AboveP15), including values
// at or under the mean. A value that matches none of them (NaN) is 0.
func Indicator(v float64, a model.Aggregates) int {
	if a.Degenerate() {
		return Neutral
	}
	switch {
	case v > a.Max:
		return AboveMax
	case v > a.Mean+2*a.Std:
		return AboveTwoStd
	case v > a.P15:
		return AboveP15
	case v <= a.P15:
		return AtOrBelowP15
	}
	return Neutral
}

// Indicators classifies a whole metric column; values and refs are row-aligned.
func Indicators(values []float64, refs []model.Aggregates) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = Indicator(v, refs[i])
	}
	return out
}

// Report counts reference groups that could not produce a signal.
type Report struct {
	Groups           int            // distinct grouping keys
	DegenerateGroups map[string]int // by metric name
}

// Score annotates sessions with per-metric reference aggregates and
// indicators, sums the indicators into Fatigue, describes Fatigue with the
// same grouping, and returns the rows sorted by date, most recent first.
// Rows on the same date keep their input order.
func Score(sessions []model.Session, metrics []string, by model.GroupBy) ([]model.ScoredSession, Report) {
	n := len(sessions)
	key := stats.KeyFunc(sessions, by)
	rep := Report{DegenerateGroups: make(map[string]int)}

	rows := make([]model.ScoredSession, n)
	for i, s := range sessions {
		rows[i] = model.ScoredSession{
			Session:    s,
			Refs:       make([]model.Aggregates, len(metrics)),
			Indicators: make([]int, len(metrics)),
		}
	}

	column := make([]float64, n)
	for m, name := range metrics {
		for i, s := range sessions {
			column[i] = s.Values[m]
		}
		groups := stats.Group(n, key, func(i int) float64 { return column[i] })
		rep.Groups = len(groups)
		for _, a := range groups {
			if a.Degenerate() {
				rep.DegenerateGroups[name]++
			}
		}
		refs := stats.Broadcast(n, key, groups)
		ind := Indicators(column, refs)
		for i := range rows {
			rows[i].Refs[m] = refs[i]
			rows[i].Indicators[m] = ind[i]
			rows[i].Fatigue += ind[i]
		}
	}

	fatigue := stats.Transform(n, key, func(i int) float64 { return float64(rows[i].Fatigue) })
	for i := range rows {
		rows[i].FatigueRef = fatigue[i]
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, rep
}

// OutOfBand places a row's fatigue against its band mean±std:
// 1 above, -1 below, 0 inside or when the band is undefined.
func OutOfBand(r model.ScoredSession) int {
	ref := r.FatigueRef
	if math.IsNaN(ref.Std) || math.IsNaN(ref.Mean) {
		return 0
	}
	f := float64(r.Fatigue)
	switch {
	case f > ref.Mean+ref.Std:
		return 1
	case f < ref.Mean-ref.Std:
		return -1
	}
	return 0
}
