// Package dedupe collapses the drill entries recorded for a player on one day
// into a single canonical session.
//
// The canonical session is the runner-up by load: the entry with the highest
// load is removed first, then the highest of what remains is kept.
package dedupe

import (
	"math"
	"sort"
	"strings"

	"github.com/pable/go-load-metrics/internal/model"
)

// Key identifies a (date, player) group.
type Key struct {
	Date   int64 // unix nanoseconds of the parsed session date
	Player string
}

// KeyOf returns the group key of s.
func KeyOf(s model.Session) Key {
	return Key{Date: s.Date.UnixNano(), Player: s.Player}
}

// Report counts what Canonicalize did.
type Report struct {
	Input               int // sessions in
	Groups              int // distinct (date, player) pairs
	Singletons          int // groups holding a single session
	SingletonsPreserved int
	SingletonsDropped   int
	Output              int // sessions out
}

// Removed is the number of input sessions not in the output.
func (r Report) Removed() int { return r.Input - r.Output }

// Canonicalize keeps one session per (date, player): DropMax, then KeepMax.
// Groups of two or more keep their second-highest load. A singleton group has
// nothing left after DropMax; SingletonPreserve keeps its only session, while
// SingletonLegacyDrop lets the pair vanish from the output.
//
// Output is ordered by date, then player.
func Canonicalize(sessions []model.Session, load int, policy model.SingletonPolicy) ([]model.Session, Report) {
	sizes := make(map[Key]int)
	for _, s := range sessions {
		sizes[KeyOf(s)]++
	}
	rep := Report{Input: len(sessions), Groups: len(sizes)}
	for _, n := range sizes {
		if n == 1 {
			rep.Singletons++
		}
	}

	pool := DropMax(sessions, load)
	if policy == model.SingletonLegacyDrop {
		rep.SingletonsDropped = rep.Singletons
	} else {
		for _, s := range sessions {
			if sizes[KeyOf(s)] == 1 {
				pool = append(pool, s)
			}
		}
		rep.SingletonsPreserved = rep.Singletons
	}

	out := KeepMax(pool, load)
	rep.Output = len(out)
	return out, rep
}

// DropMax removes, from each (date, player) group, the session with the
// highest load. Ties go to the earliest session; a NaN load ranks below any
// number. Remaining sessions keep their input order.
func DropMax(sessions []model.Session, load int) []model.Session {
	best := maxIndex(sessions, load)
	drop := make(map[int]bool, len(best))
	for _, i := range best {
		drop[i] = true
	}
	out := make([]model.Session, 0, len(sessions)-len(drop))
	for i, s := range sessions {
		if !drop[i] {
			out = append(out, s)
		}
	}
	return out
}

// KeepMax keeps only the highest-load session of each (date, player) group,
// with the same tie rules as DropMax. Output is ordered by date, then player.
func KeepMax(sessions []model.Session, load int) []model.Session {
	best := maxIndex(sessions, load)
	keys := make([]Key, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return strings.Compare(keys[i].Player, keys[j].Player) < 0
	})
	out := make([]model.Session, len(keys))
	for i, k := range keys {
		out[i] = sessions[best[k]]
	}
	return out
}

// maxIndex returns, per group, the index of the first session with the highest load.
func maxIndex(sessions []model.Session, load int) map[Key]int {
	best := make(map[Key]int)
	for i, s := range sessions {
		k := KeyOf(s)
		j, ok := best[k]
		if !ok || greater(s.Values[load], sessions[j].Values[load]) {
			best[k] = i
		}
	}
	return best
}

// greater orders loads with NaN below everything, so a real value always
// beats a missing one and two NaNs never displace each other.
func greater(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	return math.IsNaN(b) || a > b
}
