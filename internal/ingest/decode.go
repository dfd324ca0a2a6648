package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-load-metrics/internal/model"
)

// Schema names the header of every column the pipeline reads.
type Schema struct {
	Team     string
	MatchDay string
	Date     string
	Player   string
	Position string
	Load     string
	// Metrics lists the tracked numeric columns. When empty, every all-numeric
	// column outside the identity columns is tracked, except week-numbering
	// columns and a derived match-day column.
	Metrics []string
}

// Decode maps sheet columns onto session records. A missing required column
// or metric is an ErrSchema; a non-numeric metric cell is an ErrIngestion.
func Decode(sheet *model.Sheet, s Schema) (*model.RawTable, error) {
	idx := headerIndex(sheet.Header)

	required := []string{s.Team, s.MatchDay, s.Date, s.Player, s.Position}
	cols := make([]int, len(required))
	for i, name := range required {
		c, ok := idx.find(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrSchema, name)
		}
		cols[i] = c
	}

	metrics := append([]string(nil), s.Metrics...)
	if len(metrics) == 0 {
		metrics = discoverMetrics(sheet, required, s.Load)
	}
	metricCols := make([]int, len(metrics))
	for i, m := range metrics {
		c, ok := idx.find(m)
		if !ok {
			return nil, fmt.Errorf("%w: missing metric column %q", ErrSchema, m)
		}
		metricCols[i] = c
		metrics[i] = sheet.Header[c]
	}

	load := s.Load
	if c, ok := idx.find(load); ok {
		load = sheet.Header[c]
	}
	table := &model.RawTable{
		Source:  sheet.Source,
		Hash:    sheet.Hash,
		Metrics: metrics,
		Load:    load,
	}
	if table.LoadIndex() < 0 {
		return nil, fmt.Errorf("%w: load metric %q is not a tracked numeric column", ErrSchema, s.Load)
	}

	table.Records = make([]model.SessionRecord, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec := model.SessionRecord{
			Row:           i + 1,
			Team:          strings.TrimSpace(cell(row, cols[0])),
			MatchDayLabel: cell(row, cols[1]),
			DateText:      strings.TrimSpace(cell(row, cols[2])),
			Player:        strings.TrimSpace(cell(row, cols[3])),
			Position:      strings.TrimSpace(cell(row, cols[4])),
			Values:        make([]float64, len(metrics)),
		}
		if serial, err := strconv.ParseFloat(rec.DateText, 64); err == nil && serial >= 1 {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: date serial %q: %v", ErrIngestion, rec.Row, rec.DateText, err)
			}
			rec.DateValue = t
		}
		for j, c := range metricCols {
			v, err := parseMetric(cell(row, c))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %v", ErrIngestion, rec.Row, metrics[j], err)
			}
			rec.Values[j] = v
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// parseMetric reads a metric cell. Empty cells are NaN; the literal "None"
// that some exports write for missing values reads as 0.
func parseMetric(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "NaN", "nan":
		return math.NaN(), nil
	case "None":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// discoverMetrics picks the float columns outside the identity columns: every
// non-empty cell is numeric and at least one is fractional or missing. An
// all-integer column (jersey number, player id) is not a metric. The load
// column only has to be numeric.
func discoverMetrics(sheet *model.Sheet, identity []string, load string) []string {
	skip := make(map[string]bool, len(identity))
	for _, name := range identity {
		skip[normalizeHeader(name)] = true
	}
	var out []string
	for c, name := range sheet.Header {
		key := normalizeHeader(name)
		if name == "" || skip[key] || strings.HasPrefix(name, "Week") || key == "match day value" || key == model.ColumnMatchDay {
			continue
		}
		numeric, float := columnKind(sheet.Rows, c)
		if float || (numeric && load != "" && key == normalizeHeader(load)) {
			out = append(out, name)
		}
	}
	return out
}

// columnKind reports whether column c holds only numbers (with at least one
// present), and whether it would load as floating point: some value is
// fractional or some cell is missing.
func columnKind(rows [][]string, c int) (numeric, float bool) {
	seen := false
	for _, row := range rows {
		v, err := parseMetric(cell(row, c))
		if err != nil {
			return false, false
		}
		if math.IsNaN(v) {
			float = true
			continue
		}
		if v != math.Trunc(v) {
			float = true
		}
		seen = true
	}
	return seen, seen && float
}

type headers map[string]int

func headerIndex(header []string) headers {
	idx := make(headers, len(header))
	for i, h := range header {
		if _, dup := idx[normalizeHeader(h)]; !dup {
			idx[normalizeHeader(h)] = i
		}
	}
	return idx
}

func (h headers) find(name string) (int, bool) {
	i, ok := h[normalizeHeader(name)]
	return i, ok
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
