package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/scoring"
)

const dateLayout = "02/01/2006"

var (
	cHigh = color.New(color.FgRed, color.Bold)
	cLow  = color.New(color.FgCyan)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintTableSummary prints a one-line header for a scored table.
func PrintTableSummary(w io.Writer, t *model.ScoredTable, key string) {
	if len(key) > 12 {
		key = key[:12]
	}
	fmt.Fprintf(w, "\nSource: %s  |  Team: %s  |  Grouped by: %s  |  Load: %s  |  Sessions: %d  |  Key: %s\n\n",
		t.Source, t.Team, t.GroupBy, t.Load, len(t.Rows), key)
}

// PrintSessionTable prints the scored sessions, most recent first. At most
// limit rows are printed (all when limit <= 0). If focus is set, that
// player's rows are marked with ">".
func PrintSessionTable(w io.Writer, t *model.ScoredTable, focus string, limit int) {
	table := newTable(w)
	table.Header(" ", "DATE", "PLAYER", "POS", "MD", "LOAD", "INDICATORS", "FATIGUE", "BAND", " ")

	load := t.LoadIndex()
	for i, r := range t.Rows {
		if limit > 0 && i == limit {
			break
		}
		marker := " "
		if focus != "" && r.Player == focus {
			marker = ">"
		}
		loadStr := "—"
		if load >= 0 {
			loadStr = fmtFloat(r.Values[load], 0)
		}
		table.Append(
			marker,
			r.Date.Format(dateLayout),
			r.Player,
			r.Position,
			fmtMatchDay(r.MatchDay),
			loadStr,
			fmtIndicators(r.Indicators),
			strconv.Itoa(r.Fatigue),
			fmtBand(r.FatigueRef),
			bandMarker(scoring.OutOfBand(r)),
		)
	}
	table.Render()
	if limit > 0 && len(t.Rows) > limit {
		fmt.Fprintf(w, "(%d of %d sessions shown)\n", limit, len(t.Rows))
	}
}

// PrintPlayerList prints the distinct player names in table order.
func PrintPlayerList(w io.Writer, t *model.ScoredTable) {
	table := newTable(w)
	table.Header("#", "PLAYER", "SESSIONS", "LAST SESSION")

	counts := make(map[string]int)
	last := make(map[string]string)
	for _, r := range t.Rows {
		counts[r.Player]++
		if _, ok := last[r.Player]; !ok {
			last[r.Player] = r.Date.Format(dateLayout)
		}
	}
	for i, p := range t.Players() {
		table.Append(strconv.Itoa(i+1), p, strconv.Itoa(counts[p]), last[p])
	}
	table.Render()
}

// PrintTrendTable prints a player's recent sessions with the fatigue band
// and a marker for scores outside mean±std. rows are expected newest first.
func PrintTrendTable(w io.Writer, player string, rows []model.ScoredSession) {
	fmt.Fprintf(w, "\nFatigue trend: %s (last %d sessions)\n\n", player, len(rows))

	table := newTable(w)
	table.Header("DATE", "MD", "FATIGUE", "MEAN", "STD", "LOW", "HIGH", " ")

	for _, r := range rows {
		ref := r.FatigueRef
		table.Append(
			r.Date.Format(dateLayout),
			fmtMatchDay(r.MatchDay),
			strconv.Itoa(r.Fatigue),
			fmtFloat(ref.Mean, 2),
			fmtFloat(ref.Std, 2),
			fmtFloat(ref.Mean-ref.Std, 2),
			fmtFloat(ref.Mean+ref.Std, 2),
			bandMarker(scoring.OutOfBand(r)),
		)
	}
	table.Render()
}

// PrintQueryResult prints the result of an ad-hoc query over the cached
// datasets. NULL cells are shown as "—" like a missing metric.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no cached rows matched)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			if v == "NULL" {
				v = "—"
			}
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

func fmtFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func fmtMatchDay(md int) string {
	if md == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", md)
}

func fmtIndicators(ind []int) string {
	parts := make([]string, len(ind))
	for i, v := range ind {
		parts[i] = fmtMatchDay(v)
	}
	return strings.Join(parts, " ")
}

func fmtBand(a model.Aggregates) string {
	if math.IsNaN(a.Std) {
		return fmtFloat(a.Mean, 2)
	}
	return fmt.Sprintf("%.2f ± %.2f", a.Mean, a.Std)
}

func bandMarker(side int) string {
	switch {
	case side > 0:
		return cHigh.Sprint("▲")
	case side < 0:
		return cLow.Sprint("▼")
	}
	return " "
}
