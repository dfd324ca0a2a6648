package stats

import "github.com/pable/go-load-metrics/internal/model"

// GroupKey is the reference-statistics grouping key: match-day category plus
// either the position or the player.
type GroupKey struct {
	MatchDay int
	Group    string
}

// KeyFunc returns the grouping key of session rows under by.
func KeyFunc(rows []model.Session, by model.GroupBy) func(int) GroupKey {
	if by == model.GroupByPlayer {
		return func(i int) GroupKey { return GroupKey{rows[i].MatchDay, rows[i].Player} }
	}
	return func(i int) GroupKey { return GroupKey{rows[i].MatchDay, rows[i].Position} }
}
