// Package normalize filters raw session records to one team and derives the
// match-day category and session date of each.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-load-metrics/internal/model"
)

// ErrDate is returned when a session date cannot be parsed. It is fatal for a run.
var ErrDate = errors.New("unparseable session date")

// DefaultMarker is the token that follows the signed offset in a match-day label.
const DefaultMarker = "MD"

// labelSpace matches the gap between offset and marker. Exports often write a
// no-break space or a vertical tab there, which RE2's \s does not cover.
const labelSpace = `[\s\v\p{Zs}\x{85}\x{1c}-\x{1f}\x{2028}\x{2029}]+`

// Normalizer holds the compiled match-day pattern and the team filter.
type Normalizer struct {
	team    string
	pattern *regexp.Regexp
}

// New returns a Normalizer keeping records of team whose labels use marker.
func New(team, marker string) *Normalizer {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Normalizer{
		team:    strings.TrimSpace(team),
		pattern: regexp.MustCompile(`([-+]?\d+)` + labelSpace + regexp.QuoteMeta(marker)),
	}
}

// Normalize filters records to the team, then derives MatchDay and Date for
// each survivor. Output order follows input order.
func (n *Normalizer) Normalize(records []model.SessionRecord) ([]model.Session, error) {
	kept := FilterTeam(records, n.team)
	out := make([]model.Session, 0, len(kept))
	for _, rec := range kept {
		date := rec.DateValue
		if date.IsZero() {
			d, err := ParseDate(rec.DateText)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rec.Row, err)
			}
			date = d
		}
		out = append(out, model.Session{
			SessionRecord: rec,
			MatchDay:      n.MatchDay(rec.MatchDayLabel),
			Date:          date,
		})
	}
	return out, nil
}

// FilterTeam keeps the records whose team equals team. Others are dropped silently.
func FilterTeam(records []model.SessionRecord, team string) []model.SessionRecord {
	team = strings.TrimSpace(team)
	out := make([]model.SessionRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Team) == team {
			out = append(out, r)
		}
	}
	return out
}

// MatchDay extracts the signed offset before the marker. Labels without one, and
// offsets outside [MatchDayMin, MatchDayMax], map to 0.
func (n *Normalizer) MatchDay(label string) int {
	m := n.pattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < model.MatchDayMin || v > model.MatchDayMax {
		return 0
	}
	return v
}

// ParseMatchDay is MatchDay with the default marker.
func ParseMatchDay(label string) int {
	return defaultNormalizer.MatchDay(label)
}

var defaultNormalizer = New("", DefaultMarker)

// Day-first layouts, tried in order. ISO dates are unambiguous and accepted too.
var dateLayouts = []string{
	"2/1/2006", "2/1/06", "2-1-2006", "2-1-06", "2.1.2006", "2.1.06",
	"2006-01-02",
}

var timeSuffixes = []string{"", " 15:04", " 15:04:05", "T15:04:05", "T15:04:05Z07:00"}

// ParseDate parses a day-first session date, with an optional time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, d := range dateLayouts {
			for _, t := range timeSuffixes {
				if v, err := time.Parse(d+t, s); err == nil {
					return v, nil
				}
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDate, s)
}
