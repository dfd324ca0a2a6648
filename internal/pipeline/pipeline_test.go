package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/pable/go-load-metrics/internal/metrics"
	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/normalize"
)

func rec(team, player, pos, date, md string, dist, hsr float64) model.SessionRecord {
	return model.SessionRecord{Team: team, Player: player, Position: pos, DateText: date, MatchDayLabel: md, Values: []float64{dist, hsr}}
}

func rawTable(records ...model.SessionRecord) *model.RawTable {
	return &model.RawTable{
		Source:  "test.xlsx",
		Hash:    "abc",
		Metrics: []string{"distance", "hsr"},
		Load:    "distance",
		Records: records,
	}
}

func fixture() *model.RawTable {
	const team = "Villarreal B"
	return rawTable(
		// Ana on 01/03: total + two drills -> keeps 5000.
		rec(team, "Ana García", "MF", "01/03/2024", "-2 MD", 9000, 400),
		rec(team, "Ana García", "MF", "01/03/2024", "-2 MD", 5000, 300),
		rec(team, "Ana García", "MF", "01/03/2024", "-2 MD", 3000, 100),
		// Bea on 01/03: total + drill -> keeps 4000.
		rec(team, "Bea Ruiz", "MF", "01/03/2024", "-2 MD", 8000, 380),
		rec(team, "Bea Ruiz", "MF", "01/03/2024", "-2 MD", 4000, 200),
		// Cris on 02/03: single entry.
		rec(team, "Cris Sanz", "FW", "02/03/2024", "-1 MD", 6000, 500),
		// Other team is filtered.
		rec("Villarreal C", "Dani Gil", "MF", "01/03/2024", "-2 MD", 7000, 350),
		// Ana again on 03/03, outside the match-day domain -> category 0.
		rec(team, "Ana García", "MF", "03/03/2024", "+7 MD", 6500, 310),
		rec(team, "Ana García", "MF", "03/03/2024", "+7 MD", 2500, 90),
	)
}

func TestRun(t *testing.T) {
	m := metrics.New()
	out, err := Run(context.Background(), fixture(), WithTeam("Villarreal B"), WithMetrics(m))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Rows) != 4 {
		t.Fatalf("expected 4 rows (Ana x2, Bea, Cris), got %d", len(out.Rows))
	}
	if out.Rows[0].Date.Day() != 3 || out.Rows[len(out.Rows)-1].Date.Day() != 1 {
		t.Errorf("rows not sorted by date descending")
	}

	loads := map[string]float64{}
	for _, r := range out.Rows {
		if r.Date.Day() == 1 {
			loads[r.Player] = r.Values[0]
		}
		if r.Player == "Dani Gil" {
			t.Error("other team not filtered")
		}
	}
	if loads["Ana García"] != 5000 || loads["Bea Ruiz"] != 4000 {
		t.Errorf("runner-up loads: %v", loads)
	}

	top := out.Rows[0]
	if top.Player != "Ana García" || top.MatchDay != 0 || top.Values[0] != 2500 {
		t.Errorf("03/03 row: %+v", top.Session)
	}
	if out.Team != "Villarreal B" || out.GroupBy != model.GroupByPosition || out.Hash != "abc" {
		t.Errorf("table metadata: %+v", out)
	}
	if got := out.Players(); len(got) != 3 || got[0] != "Ana García" {
		t.Errorf("players: %v", got)
	}
	if w := out.Window("Ana García", 1); len(w) != 1 || w[0].Date.Day() != 3 {
		t.Errorf("window: %+v", w)
	}
}

func TestRunLegacyDrop(t *testing.T) {
	out, err := Run(context.Background(), fixture(),
		WithTeam("Villarreal B"), WithSingletonPolicy(model.SingletonLegacyDrop))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range out.Rows {
		if r.Player == "Cris Sanz" {
			t.Fatal("single-entry day should be dropped under legacy policy")
		}
	}
	if len(out.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(out.Rows))
	}
}

func TestRunGroupByPlayer(t *testing.T) {
	out, err := Run(context.Background(), fixture(), WithTeam("Villarreal B"), WithGroupBy(model.GroupByPlayer))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range out.Rows {
		if r.Refs[0].Count != 1 {
			t.Errorf("%s on %s: each player/match-day group holds one row here, got %d", r.Player, r.Date.Format("02/01"), r.Refs[0].Count)
		}
	}
}

func TestRunBadDate(t *testing.T) {
	raw := rawTable(rec("Villarreal B", "Ana", "MF", "31/31/2024", "-1 MD", 1, 1))
	_, err := Run(context.Background(), raw, WithTeam("Villarreal B"))
	if !errors.Is(err, normalize.ErrDate) {
		t.Fatalf("want ErrDate, got %v", err)
	}
}

func TestRunEmpty(t *testing.T) {
	out, err := Run(context.Background(), rawTable(), WithTeam("Villarreal B"))
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if len(out.Rows) != 0 {
		t.Errorf("empty input: got %d rows", len(out.Rows))
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, fixture(), WithTeam("Villarreal B")); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestRunRejectsUntrackedLoad(t *testing.T) {
	raw := fixture()
	raw.Load = "sprints"
	if _, err := Run(context.Background(), raw); err == nil {
		t.Fatal("expected error for untracked load metric")
	}
}
