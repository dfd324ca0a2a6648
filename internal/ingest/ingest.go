// Package ingest reads session exports from disk and maps their columns onto
// the pipeline's record layout.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xuri/excelize/v2"

	"github.com/pable/go-load-metrics/internal/model"
)

// Sentinel errors. Both are fatal for a run.
var (
	ErrIngestion = errors.New("ingestion error")
	ErrSchema    = errors.New("schema error")
)

// Load reads the file at path into a Sheet. XLSX workbooks read sheetName, or
// the first sheet when sheetName is empty; CSV files are sniffed for a
// semicolon or comma delimiter. A trailing ".zst" is decompressed first and
// the inner extension picks the reader. The returned Sheet carries the
// SHA-256 of the file bytes as stored.
func Load(path, sheetName string) (*model.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIngestion, path, err)
	}
	defer f.Close()

	// Hash file for the cache key.
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("%w: hash %s: %v", ErrIngestion, path, err)
	}
	hash := fmt.Sprintf("%x", h.Sum(nil))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek %s: %v", ErrIngestion, path, err)
	}

	var r io.Reader = f
	name := path
	if strings.EqualFold(filepath.Ext(name), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd %s: %v", ErrIngestion, path, err)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(r, sheetName)
	case ".csv", ".txt":
		rows, err = readCSV(r)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIngestion, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no header row", ErrSchema, path)
	}

	header := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return &model.Sheet{
		Source: path,
		Hash:   hash,
		Header: header,
		Rows:   dropBlankRows(rows[1:]),
	}, nil
}

func readWorkbook(r io.Reader, sheetName string) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	if sheetName == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheetName = sheets[0]
	}
	// Raw values keep dates as serial numbers instead of locale-formatted text.
	rows, err := wb.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas,
// as spreadsheet tools in comma-decimal locales write.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
