package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-load-metrics/internal/model"
)

func row(player string, day, md, fatigue int, mean, std float64) model.ScoredSession {
	return model.ScoredSession{
		Session: model.Session{
			SessionRecord: model.SessionRecord{Player: player, Position: "MF", Values: []float64{5400, 300}},
			MatchDay:      md,
			Date:          time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		},
		Indicators: []int{1, fatigue - 1},
		Fatigue:    fatigue,
		FatigueRef: model.Aggregates{Mean: mean, Std: std},
	}
}

func table() *model.ScoredTable {
	return &model.ScoredTable{
		Source:  "sessions.xlsx",
		Team:    "Villarreal B",
		GroupBy: model.GroupByPosition,
		Metrics: []string{"distance", "hsr"},
		Load:    "distance",
		Rows: []model.ScoredSession{
			row("Ana", 3, -1, 4, 1, 1),
			row("Bea", 2, -2, 1, 1, math.NaN()),
			row("Ana", 1, 2, -1, 1, 1),
		},
	}
}

func TestPrintSessionTable(t *testing.T) {
	var buf bytes.Buffer
	PrintSessionTable(&buf, table(), "Ana", 2)
	out := buf.String()

	for _, want := range []string{"DATE", "FATIGUE", "03/03/2024", "5400", "1.00 ± 1.00", "▲", ">", "(2 of 3 sessions shown)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "01/03/2024") {
		t.Errorf("limit not applied:\n%s", out)
	}
}

func TestPrintPlayerList(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayerList(&buf, table())
	out := buf.String()
	if strings.Index(out, "Ana") > strings.Index(out, "Bea") {
		t.Errorf("players not in table order:\n%s", out)
	}
	if strings.Count(out, "Ana") != 1 {
		t.Errorf("player listed more than once:\n%s", out)
	}
}

func TestPrintTrendTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTrendTable(&buf, "Ana", table().Window("Ana", 10))
	out := buf.String()
	for _, want := range []string{"Fatigue trend: Ana (last 2 sessions)", "▲", "▼", "2.00", "0.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := fmtFloat(math.NaN(), 2); got != "—" {
		t.Errorf("NaN: got %q", got)
	}
	if got := fmtMatchDay(-3); got != "-3" {
		t.Errorf("match day: got %q", got)
	}
	if got := fmtMatchDay(4); got != "+4" {
		t.Errorf("match day: got %q", got)
	}
	if got := fmtIndicators([]int{3, 0, -1}); got != "+3 0 -1" {
		t.Errorf("indicators: got %q", got)
	}
	if got := bandMarker(0); got != " " {
		t.Errorf("in band: got %q", got)
	}
}

func TestPrintQueryResult(t *testing.T) {
	var buf bytes.Buffer
	PrintQueryResult(&buf, []string{"player", "fatigue_std"}, [][]string{{"Ana García", "NULL"}, {"Luis Pérez", "1.5"}})
	out := buf.String()
	if !strings.Contains(out, "Ana García") || !strings.Contains(out, "Luis Pérez") {
		t.Errorf("missing players:\n%s", out)
	}
	if strings.Contains(out, "NULL") || !strings.Contains(out, "—") {
		t.Errorf("NULL should print as a missing value:\n%s", out)
	}
	if !strings.Contains(out, "(2 rows)") {
		t.Errorf("missing row count:\n%s", out)
	}

	buf.Reset()
	PrintQueryResult(&buf, []string{"player"}, nil)
	if got := buf.String(); got != "(no cached rows matched)\n" {
		t.Errorf("empty result: got %q", got)
	}
}
