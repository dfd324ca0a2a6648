// Package export writes the enriched output table to XLSX or CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-load-metrics/internal/model"
)

// ErrFormat is returned for an output path whose extension has no writer.
var ErrFormat = errors.New("unsupported export format")

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Fatigue"

const csvDateLayout = "2006-01-02"

// File writes t to path, choosing the format from the extension.
func File(path string, t *model.ScoredTable) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".csv" {
		return fmt.Errorf("%w: %q", ErrFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if ext == ".xlsx" {
		err = WriteXLSX(f, t)
	} else {
		err = WriteCSV(f, t)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// cells returns the output values of r in t.Columns() order. Missing
// numbers are NaN.
func cells(r model.ScoredSession) []any {
	out := []any{r.Team, r.Player, r.Position, r.Date, r.MatchDayLabel, r.MatchDay}
	for _, v := range r.Values {
		out = append(out, v)
	}
	for _, a := range r.Refs {
		for _, v := range a.Values() {
			out = append(out, v)
		}
	}
	for _, ind := range r.Indicators {
		out = append(out, ind)
	}
	out = append(out, r.Fatigue)
	for _, v := range r.FatigueRef.Values() {
		out = append(out, v)
	}
	return out
}

// WriteXLSX writes t as a single-sheet workbook. Dates are native date
// cells and missing numbers are left empty.
func WriteXLSX(w io.Writer, t *model.ScoredTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	header := t.Columns()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return err
	}

	for i, r := range t.Rows {
		row := cells(r)
		for j, v := range row {
			if x, ok := v.(float64); ok && math.IsNaN(x) {
				row[j] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// WriteCSV writes t as comma-separated values with a header row. Dates
// are ISO formatted and missing numbers are empty.
func WriteCSV(w io.Writer, t *model.ScoredTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		vals := cells(r)
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = formatCSV(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCSV(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(csvDateLayout)
	}
	return fmt.Sprint(v)
}
