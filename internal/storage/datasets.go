package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-load-metrics/internal/model"
)

// Fingerprint is everything that determines a scored table: the source
// bytes plus every pipeline setting. Equal fingerprints give equal output.
type Fingerprint struct {
	SourceHash string
	Sheet      string
	Team       string
	Marker     string
	GroupBy    model.GroupBy
	Policy     model.SingletonPolicy
	Columns    []string
	Metrics    []string
	Load       string
}

// Key returns the hex SHA-256 of the fingerprint, used as the dataset key.
func (f Fingerprint) Key() string {
	parts := []string{
		f.SourceHash, f.Sheet, f.Team, f.Marker, f.GroupBy.String(), string(f.Policy),
		strings.Join(f.Columns, "\x1e"), strings.Join(f.Metrics, "\x1e"), f.Load,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// DatasetExists returns true if a dataset with the given key is already stored.
func (db *DB) DatasetExists(key string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM datasets WHERE key = ?", key).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const datasetColumns = `key, run_id, source, source_hash, team, group_by, policy, load_metric, row_count, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(r rowScanner) (model.Dataset, error) {
	var d model.Dataset
	var groupBy, policy, created string
	if err := r.Scan(&d.Key, &d.RunID, &d.Source, &d.SourceHash, &d.Team,
		&groupBy, &policy, &d.Load, &d.Rows, &created); err != nil {
		return d, err
	}
	d.GroupBy = model.GroupBy(groupBy)
	d.Policy = model.SingletonPolicy(policy)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return d, fmt.Errorf("dataset %s: created_at: %w", d.Key, err)
	}
	d.CreatedAt = t
	return d, nil
}

// ListDatasets returns all cached datasets, newest first. Metric names are
// not filled in; use GetDatasetByPrefix for a single dataset with metrics.
func (db *DB) ListDatasets() ([]model.Dataset, error) {
	rows, err := db.conn.Query(`SELECT ` + datasetColumns + ` FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDatasetByPrefix finds the first dataset whose key starts with the given prefix.
// It returns nil, nil when nothing matches.
func (db *DB) GetDatasetByPrefix(prefix string) (*model.Dataset, error) {
	d, err := scanDataset(db.conn.QueryRow(
		`SELECT `+datasetColumns+` FROM datasets WHERE key LIKE ? ORDER BY created_at DESC LIMIT 1`,
		prefix+"%"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if d.Metrics, err = db.datasetMetrics(d.Key); err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) datasetMetrics(key string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM dataset_metrics WHERE dataset_key = ? ORDER BY idx`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// DeleteDataset removes a dataset and its rows. Deleting a missing key is not an error.
func (db *DB) DeleteDataset(key string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteRows(tx, key); err != nil {
		return err
	}
	return tx.Commit()
}
