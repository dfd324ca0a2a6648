package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPipelineCounters(t *testing.T) {
	p := New()
	p.RowsIngested(10)
	p.RowsFiltered(3)
	p.RowsDeduplicated(4)
	p.RowsScored(3)
	p.SingletonGroups("preserved", 2)
	p.SingletonGroups("dropped", 0)
	p.DegenerateGroups("distance", 1)
	p.CacheLookup(true)
	p.CacheLookup(false)
	p.CacheLookup(false)

	if got := testutil.ToFloat64(p.rowsIngested); got != 10 {
		t.Errorf("rows ingested: want 10, got %v", got)
	}
	if got := testutil.ToFloat64(p.singletonGroups.WithLabelValues("preserved")); got != 2 {
		t.Errorf("preserved singletons: want 2, got %v", got)
	}
	if got := testutil.ToFloat64(p.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses: want 2, got %v", got)
	}
	if n := testutil.CollectAndCount(p.singletonGroups); n != 1 {
		t.Errorf("zero-count singleton action should not create a series, got %d series", n)
	}
}

func TestNilPipelineIsSafe(t *testing.T) {
	var p *Pipeline
	p.RowsIngested(1)
	p.CacheLookup(true)
	p.ObserveRun(time.Second)
	if err := p.WriteTextfile("/nonexistent/x.prom"); err != nil {
		t.Errorf("nil pipeline should not write: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	p := New(WithNamespace("lm"))
	p.RowsScored(7)
	p.ObserveRun(120 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "loadmetrics.prom")
	if err := p.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{"lm_pipeline_rows_scored_total 7", "lm_pipeline_run_duration_seconds_count 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in textfile:\n%s", want, out)
		}
	}
}
