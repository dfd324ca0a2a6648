package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-load-metrics/internal/model"
)

// SaveTable stores a scored table under ds.Key, replacing any previous
// rows for that key. Rows keep their order. RunID and CreatedAt are filled
// in when empty.
func (db *DB) SaveTable(ds model.Dataset, t *model.ScoredTable) error {
	if ds.Key == "" {
		return fmt.Errorf("save table: empty dataset key")
	}
	if ds.RunID == "" {
		ds.RunID = uuid.NewString()
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now().UTC()
	}
	if ds.Source == "" {
		ds.Source = t.Source
	}
	if ds.SourceHash == "" {
		ds.SourceHash = t.Hash
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteRows(tx, ds.Key); err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO datasets(`+datasetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ds.Key, ds.RunID, ds.Source, ds.SourceHash, t.Team,
		t.GroupBy.String(), string(ds.Policy), t.Load, len(t.Rows),
		ds.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	for i, m := range t.Metrics {
		if _, err := tx.Exec(`INSERT INTO dataset_metrics(dataset_key, idx, name) VALUES (?, ?, ?)`, ds.Key, i, m); err != nil {
			return fmt.Errorf("insert dataset metric %q: %w", m, err)
		}
	}

	sessStmt, err := tx.Prepare(`
		INSERT INTO sessions(
			dataset_key, seq, source_row, team, player, position,
			match_day_label, match_day, session_date, fatigue,
			fatigue_min, fatigue_max, fatigue_mean, fatigue_std, fatigue_p15, fatigue_count
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer sessStmt.Close()

	metricStmt, err := tx.Prepare(`
		INSERT INTO session_metrics(
			dataset_key, seq, metric_idx, value, indicator,
			ref_min, ref_max, ref_mean, ref_std, ref_p15, ref_count
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer metricStmt.Close()

	for seq, r := range t.Rows {
		f := r.FatigueRef
		_, err = sessStmt.Exec(
			ds.Key, seq, r.Row, r.Team, r.Player, r.Position,
			r.MatchDayLabel, r.MatchDay, r.Date.Format(time.RFC3339Nano), r.Fatigue,
			nullFloat(f.Min), nullFloat(f.Max), nullFloat(f.Mean), nullFloat(f.Std), nullFloat(f.P15), f.Count,
		)
		if err != nil {
			return fmt.Errorf("insert session %d (%s): %w", seq, r.Player, err)
		}
		for m := range t.Metrics {
			a := r.Refs[m]
			_, err = metricStmt.Exec(
				ds.Key, seq, m, nullFloat(r.Values[m]), r.Indicators[m],
				nullFloat(a.Min), nullFloat(a.Max), nullFloat(a.Mean), nullFloat(a.Std), nullFloat(a.P15), a.Count,
			)
			if err != nil {
				return fmt.Errorf("insert session metric %d/%d: %w", seq, m, err)
			}
		}
	}
	return tx.Commit()
}

// LoadTable rebuilds the scored table cached under key. It returns nil, nil
// when the key is unknown.
func (db *DB) LoadTable(key string) (*model.ScoredTable, error) {
	ds, err := db.GetDatasetByPrefix(key)
	if err != nil || ds == nil {
		return nil, err
	}
	if ds.Key != key {
		return nil, nil
	}

	t := &model.ScoredTable{
		Source:  ds.Source,
		Hash:    ds.SourceHash,
		Team:    ds.Team,
		GroupBy: ds.GroupBy,
		Metrics: ds.Metrics,
		Load:    ds.Load,
		Rows:    make([]model.ScoredSession, 0, ds.Rows),
	}
	if err := db.loadSessions(t, key); err != nil {
		return nil, err
	}
	if err := db.loadSessionMetrics(t, key); err != nil {
		return nil, err
	}
	return t, nil
}

func (db *DB) loadSessions(t *model.ScoredTable, key string) error {
	rows, err := db.conn.Query(`
		SELECT source_row, team, player, position, match_day_label, match_day, session_date, fatigue,
		       fatigue_min, fatigue_max, fatigue_mean, fatigue_std, fatigue_p15, fatigue_count
		FROM sessions WHERE dataset_key = ? ORDER BY seq`, key)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := len(t.Metrics)
	for rows.Next() {
		var r model.ScoredSession
		var date string
		var fMin, fMax, fMean, fStd, fP15 sql.NullFloat64
		if err := rows.Scan(&r.Row, &r.Team, &r.Player, &r.Position, &r.MatchDayLabel,
			&r.MatchDay, &date, &r.Fatigue,
			&fMin, &fMax, &fMean, &fStd, &fP15, &r.FatigueRef.Count); err != nil {
			return err
		}
		if r.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return fmt.Errorf("session %s: date: %w", r.Player, err)
		}
		r.DateValue = r.Date
		r.FatigueRef.Min = floatOrNaN(fMin)
		r.FatigueRef.Max = floatOrNaN(fMax)
		r.FatigueRef.Mean = floatOrNaN(fMean)
		r.FatigueRef.Std = floatOrNaN(fStd)
		r.FatigueRef.P15 = floatOrNaN(fP15)
		r.Values = make([]float64, n)
		r.Refs = make([]model.Aggregates, n)
		r.Indicators = make([]int, n)
		t.Rows = append(t.Rows, r)
	}
	return rows.Err()
}

func (db *DB) loadSessionMetrics(t *model.ScoredTable, key string) error {
	rows, err := db.conn.Query(`
		SELECT seq, metric_idx, value, indicator, ref_min, ref_max, ref_mean, ref_std, ref_p15, ref_count
		FROM session_metrics WHERE dataset_key = ?`, key)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var seq, m int
		var value, rMin, rMax, rMean, rStd, rP15 sql.NullFloat64
		var a model.Aggregates
		var indicator int
		if err := rows.Scan(&seq, &m, &value, &indicator, &rMin, &rMax, &rMean, &rStd, &rP15, &a.Count); err != nil {
			return err
		}
		if seq < 0 || seq >= len(t.Rows) || m < 0 || m >= len(t.Metrics) {
			return fmt.Errorf("session metric %d/%d out of range", seq, m)
		}
		a.Min, a.Max, a.Mean = floatOrNaN(rMin), floatOrNaN(rMax), floatOrNaN(rMean)
		a.Std, a.P15 = floatOrNaN(rStd), floatOrNaN(rP15)
		r := &t.Rows[seq]
		r.Values[m] = floatOrNaN(value)
		r.Indicators[m] = indicator
		r.Refs[m] = a
	}
	return rows.Err()
}

func deleteRows(tx *sql.Tx, key string) error {
	for _, q := range []string{
		`DELETE FROM session_metrics WHERE dataset_key = ?`,
		`DELETE FROM sessions WHERE dataset_key = ?`,
		`DELETE FROM dataset_metrics WHERE dataset_key = ?`,
		`DELETE FROM datasets WHERE key = ?`,
	} {
		if _, err := tx.Exec(q, key); err != nil {
			return fmt.Errorf("delete dataset %s: %w", key, err)
		}
	}
	return nil
}
