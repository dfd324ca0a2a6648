package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pable/go-load-metrics/internal/model"
)

func sampleTable() *model.ScoredTable {
	ref := model.Aggregates{Min: 1, Max: 9, Mean: 5, Std: 2, P15: 1.6, Count: 4}
	return &model.ScoredTable{
		Team:    "Villarreal B",
		GroupBy: model.GroupByPosition,
		Metrics: []string{"distance", "hsr"},
		Load:    "distance",
		Rows: []model.ScoredSession{
			{
				Session: model.Session{
					SessionRecord: model.SessionRecord{Team: "Villarreal B", Player: "Ana", Position: "MF", MatchDayLabel: "-2 MD", Values: []float64{5400.5, math.NaN()}},
					MatchDay:      -2,
					Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				},
				Refs:       []model.Aggregates{ref, ref},
				Indicators: []int{2, 0},
				Fatigue:    2,
				FatigueRef: model.Aggregates{Min: 2, Max: 2, Mean: 2, Std: math.NaN(), P15: 2, Count: 1},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	table := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header, row := records[0], records[1]
	assert.Equal(t, table.Columns(), header)
	require.Len(t, row, len(header))

	col := func(name string) string {
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("column %q missing", name)
		return ""
	}
	assert.Equal(t, "2024-03-01", col(model.ColumnDate))
	assert.Equal(t, "-2", col(model.ColumnMatchDay))
	assert.Equal(t, "5400.5", col("distance"))
	assert.Equal(t, "", col("hsr"), "NaN is written empty")
	assert.Equal(t, "1.6", col(model.AggregateColumn("distance", model.AggP15)))
	assert.Equal(t, "2", col(model.IndicatorColumn("distance")))
	assert.Equal(t, "2", col(model.ColumnFatigue))
	assert.Equal(t, "", col(model.ColumnFatigueStd))
}

func TestWriteXLSX(t *testing.T) {
	table := sampleTable()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, table.Columns(), rows[0])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "5400.5", rows[1][6])
	assert.Equal(t, "", rows[1][7], "NaN is left empty")
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, File(filepath.Join(dir, "out.csv"), sampleTable()))
	require.NoError(t, File(filepath.Join(dir, "out.XLSX"), sampleTable()))

	err := File(filepath.Join(dir, "out.json"), sampleTable())
	assert.ErrorIs(t, err, ErrFormat)
}
