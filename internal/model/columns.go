package model

// Output column names. The presentation layer reads ColumnDate, ColumnFatigue,
// ColumnFatigueMean and ColumnFatigueStd to draw the band.
const (
	ColumnTeam          = "team"
	ColumnPlayer        = "player"
	ColumnPosition      = "position"
	ColumnMatchDayLabel = "match_day_label"
	ColumnMatchDay      = "match_day"
	ColumnDate          = "date"
	ColumnFatigue       = "fatigue_score"
	ColumnFatigueMean   = ColumnFatigue + "_" + AggMean
	ColumnFatigueStd    = ColumnFatigue + "_" + AggStd
)

// Aggregate suffixes, in output order.
const (
	AggMin  = "min"
	AggMax  = "max"
	AggMean = "mean"
	AggStd  = "std"
	AggP15  = "p15"
)

// AggregateKinds lists the aggregate suffixes in output order.
var AggregateKinds = []string{AggMin, AggMax, AggMean, AggStd, AggP15}

// AggregateColumn names the column holding aggregate kind of metric.
func AggregateColumn(metric, kind string) string { return metric + "_" + kind }

// IndicatorColumn names the column holding the indicator of metric.
func IndicatorColumn(metric string) string { return metric + "_indicator" }

// Values returns the aggregates in AggregateKinds order.
func (a Aggregates) Values() []float64 {
	return []float64{a.Min, a.Max, a.Mean, a.Std, a.P15}
}

// Columns returns the full output header: identity columns, raw metrics,
// per-metric aggregates and indicators, then the fatigue score and its aggregates.
func (t *ScoredTable) Columns() []string {
	cols := []string{ColumnTeam, ColumnPlayer, ColumnPosition, ColumnDate, ColumnMatchDayLabel, ColumnMatchDay}
	cols = append(cols, t.Metrics...)
	for _, m := range t.Metrics {
		for _, k := range AggregateKinds {
			cols = append(cols, AggregateColumn(m, k))
		}
	}
	for _, m := range t.Metrics {
		cols = append(cols, IndicatorColumn(m))
	}
	cols = append(cols, ColumnFatigue)
	for _, k := range AggregateKinds {
		cols = append(cols, AggregateColumn(ColumnFatigue, k))
	}
	return cols
}

// LoadIndex returns the index of the load metric in Metrics, or -1.
func (t *ScoredTable) LoadIndex() int { return indexOf(t.Metrics, t.Load) }

// Players returns the distinct player names in row order.
func (t *ScoredTable) Players() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.Rows {
		if _, ok := seen[r.Player]; ok {
			continue
		}
		seen[r.Player] = struct{}{}
		out = append(out, r.Player)
	}
	return out
}

// Window returns up to n of the player's most recent rows (all when n <= 0).
// Rows are already sorted by date descending.
func (t *ScoredTable) Window(player string, n int) []ScoredSession {
	var out []ScoredSession
	for _, r := range t.Rows {
		if r.Player != player {
			continue
		}
		out = append(out, r)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
