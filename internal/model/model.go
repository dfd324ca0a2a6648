package model

import (
	"math"
	"time"
)

// GroupBy selects the second half of the reference-statistics grouping key.
// The first half is always the match-day category.
type GroupBy string

const (
	GroupByPosition GroupBy = "position"
	GroupByPlayer   GroupBy = "player"
)

func (g GroupBy) String() string { return string(g) }

// SingletonPolicy decides what happens to (date, player) groups holding a single record
// during deduplication.
type SingletonPolicy string

const (
	// SingletonPreserve keeps the only record of a singleton group.
	SingletonPreserve SingletonPolicy = "preserve"
	// SingletonLegacyDrop removes it, which loses that player/day entirely.
	SingletonLegacyDrop SingletonPolicy = "legacy-drop"
)

// MatchDay domain bounds. 0 is the non-match-proximal bucket.
const (
	MatchDayMin = -5
	MatchDayMax = 5
)

// ---- Raw input ----

// Sheet is a tabular input as read from disk, before any schema mapping.
type Sheet struct {
	Source string     // path the sheet was read from
	Hash   string     // hex SHA-256 of the source bytes
	Header []string   // first row
	Rows   [][]string // data rows; may be ragged
}

// SessionRecord is one raw drill entry for a player on a day.
type SessionRecord struct {
	Row           int // 1-based data row in the source, for error messages
	Team          string
	Player        string
	Position      string
	MatchDayLabel string    // free text, e.g. "-2 MD" or "Rest"
	DateText      string    // day-first textual date
	DateValue     time.Time // set instead of DateText when the cell held a native date
	Values        []float64 // aligned with RawTable.Metrics; NaN when the cell was empty
}

// RawTable is the decoded input handed to the pipeline.
type RawTable struct {
	Source  string
	Hash    string
	Metrics []string // tracked numeric metrics, in column order
	Load    string   // metric used to pick the canonical session
	Records []SessionRecord
}

// LoadIndex returns the index of the load metric in Metrics, or -1.
func (t *RawTable) LoadIndex() int { return indexOf(t.Metrics, t.Load) }

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// ---- Normalized and scored rows ----

// Session is a normalized record with its derived match-day category and parsed date.
type Session struct {
	SessionRecord
	MatchDay int
	Date     time.Time
}

// Aggregates is the reference aggregate set of one metric within one group.
type Aggregates struct {
	Min, Max, Mean float64
	Std            float64 // sample std; NaN when the group has fewer than two values
	P15            float64
	Count          int // non-NaN observations in the group
}

// Degenerate reports whether the group has no usable spread.
func (a Aggregates) Degenerate() bool {
	return math.IsNaN(a.Std) || a.Std == 0
}

// ScoredSession is a Session annotated with reference aggregates, indicators and fatigue.
type ScoredSession struct {
	Session
	Refs       []Aggregates // per metric
	Indicators []int        // per metric, each in {-1,0,1,2,3}
	Fatigue    int          // sum of Indicators
	FatigueRef Aggregates
}

// ScoredTable is the pipeline output, sorted by Date descending.
type ScoredTable struct {
	Source  string
	Hash    string
	Team    string
	GroupBy GroupBy
	Metrics []string
	Load    string
	Rows    []ScoredSession
}

// ---- Cache ----

// Dataset describes one cached pipeline run.
type Dataset struct {
	Key        string // hash of source bytes and pipeline settings
	RunID      string
	Source     string
	SourceHash string
	Team       string
	GroupBy    GroupBy
	Policy     SingletonPolicy
	Metrics    []string
	Load       string
	Rows       int
	CreatedAt  time.Time
}
