package dedupe

import (
	"math"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/pable/go-load-metrics/internal/model"
)

var day1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
var day2 = day1.AddDate(0, 0, 1)

// session builds a Session with a single metric (the load) and a drill tag in Position.
func session(date time.Time, player string, load float64, tag string) model.Session {
	return model.Session{
		SessionRecord: model.SessionRecord{Player: player, Position: tag, Values: []float64{load}},
		Date:          date,
	}
}

func TestCanonicalize_DrillsAndSingletons(t *testing.T) {
	in := []model.Session{
		session(day1, "Ana García", 10.0, "total"),
		session(day1, "Ana García", 7.0, "drill"),
		session(day1, "Luis Pérez", 5.0, "only"),
	}

	t.Run("legacy drop", func(t *testing.T) {
		out, rep := Canonicalize(in, 0, model.SingletonLegacyDrop)
		if len(out) != 1 {
			t.Fatalf("expected 1 row, got %d", len(out))
		}
		if out[0].Player != "Ana García" || out[0].Values[0] != 7.0 {
			t.Errorf("expected Ana's runner-up 7.0, got %s %.1f", out[0].Player, out[0].Values[0])
		}
		if rep.SingletonsDropped != 1 || rep.SingletonsPreserved != 0 {
			t.Errorf("unexpected report: %+v", rep)
		}
	})

	t.Run("preserve", func(t *testing.T) {
		out, rep := Canonicalize(in, 0, model.SingletonPreserve)
		if len(out) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(out))
		}
		if out[0].Player != "Ana García" || out[0].Values[0] != 7.0 {
			t.Errorf("expected Ana 7.0 first, got %s %.1f", out[0].Player, out[0].Values[0])
		}
		if out[1].Player != "Luis Pérez" || out[1].Values[0] != 5.0 {
			t.Errorf("expected Luis 5.0 preserved, got %s %.1f", out[1].Player, out[1].Values[0])
		}
		if rep.Groups != 2 || rep.Singletons != 1 || rep.SingletonsPreserved != 1 || rep.Removed() != 1 {
			t.Errorf("unexpected report: %+v", rep)
		}
	})
}

func TestCanonicalize_TiesGoToEarliest(t *testing.T) {
	in := []model.Session{
		session(day1, "Ana", 9, "a"),
		session(day1, "Ana", 9, "b"),
		session(day1, "Ana", 9, "c"),
	}
	out, _ := Canonicalize(in, 0, model.SingletonPreserve)
	if len(out) != 1 || out[0].Position != "b" {
		t.Fatalf("first max dropped, then first remaining max kept: want b, got %+v", out)
	}
}

func TestCanonicalize_NaNRanksLowest(t *testing.T) {
	nan := math.NaN()
	in := []model.Session{
		session(day1, "Ana", nan, "missing"),
		session(day1, "Ana", 4, "low"),
		session(day1, "Ana", 8, "high"),
	}
	out, _ := Canonicalize(in, 0, model.SingletonPreserve)
	if len(out) != 1 || out[0].Position != "low" {
		t.Fatalf("want low, got %+v", out)
	}

	in = []model.Session{
		session(day2, "Bea", nan, "first"),
		session(day2, "Bea", nan, "second"),
	}
	out, _ = Canonicalize(in, 0, model.SingletonPreserve)
	if len(out) != 1 || out[0].Position != "second" {
		t.Fatalf("all-NaN group: want second, got %+v", out)
	}
}

func TestDropMaxKeepsOrder(t *testing.T) {
	in := []model.Session{
		session(day2, "Ana", 3, "a"),
		session(day1, "Ana", 5, "b"),
		session(day2, "Ana", 6, "c"),
		session(day1, "Ana", 1, "d"),
	}
	out := DropMax(in, 0)
	got := []string{out[0].Position, out[1].Position}
	if got[0] != "a" || got[1] != "d" {
		t.Errorf("DropMax order: got %v, want [a d]", got)
	}
}

func TestKeepMaxOrderedByDateThenPlayer(t *testing.T) {
	in := []model.Session{
		session(day2, "Ana", 1, ""),
		session(day1, "Carla", 1, ""),
		session(day1, "Bea", 1, ""),
	}
	out := KeepMax(in, 0)
	want := []string{"Bea", "Carla", "Ana"}
	for i, w := range want {
		if out[i].Player != w {
			t.Fatalf("position %d: got %s, want %s", i, out[i].Player, w)
		}
	}
}

// For random groups of size >= 2, the survivor carries the second-largest load.
func TestCanonicalize_RunnerUpProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	players := []string{"Ana", "Bea", "Cris", "Dani"}
	var in []model.Session
	loads := make(map[Key][]float64)
	for d := 0; d < 10; d++ {
		date := day1.AddDate(0, 0, d)
		for _, p := range players {
			n := 2 + rng.Intn(4)
			for i := 0; i < n; i++ {
				v := float64(rng.Intn(50))
				in = append(in, session(date, p, v, ""))
				k := Key{Date: date.UnixNano(), Player: p}
				loads[k] = append(loads[k], v)
			}
		}
	}
	rng.Shuffle(len(in), func(i, j int) { in[i], in[j] = in[j], in[i] })

	out, rep := Canonicalize(in, 0, model.SingletonPreserve)
	if len(out) != len(loads) || rep.Output != len(loads) {
		t.Fatalf("expected one row per group (%d), got %d", len(loads), len(out))
	}
	seen := make(map[Key]bool)
	for _, s := range out {
		k := KeyOf(s)
		if seen[k] {
			t.Fatalf("duplicate row for %+v", k)
		}
		seen[k] = true
		vals := append([]float64(nil), loads[k]...)
		sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
		if s.Values[0] != vals[1] {
			t.Errorf("%s on %d: got load %.0f, want second largest %.0f of %v", s.Player, k.Date, s.Values[0], vals[1], vals)
		}
	}
}
