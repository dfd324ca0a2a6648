package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/ingest"
	"github.com/pable/go-load-metrics/internal/logger"
	"github.com/pable/go-load-metrics/internal/model"
	"github.com/pable/go-load-metrics/internal/pipeline"
	"github.com/pable/go-load-metrics/internal/report"
	"github.com/pable/go-load-metrics/internal/storage"
)

var (
	scoreLimit  int
	scorePlayer string
)

var scoreCmd = &cobra.Command{
	Use:   "score <sessions.xlsx|csv>",
	Short: "Score every session in an export and print the fatigue table",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 50, "max rows to print, most recent first (0 = all)")
	scoreCmd.Flags().StringVar(&scorePlayer, "player", "", "highlight this player's rows")
}

func runScore(cmd *cobra.Command, args []string) error {
	table, key, err := scoreFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	report.PrintTableSummary(os.Stdout, table, key)
	report.PrintSessionTable(os.Stdout, table, scorePlayer, scoreLimit)
	return nil
}

// scoreFile ingests path and returns its scored table with the cache key.
// An identical file scored with identical settings is served from the cache
// unless --no-cache is set.
func scoreFile(ctx context.Context, path string) (*model.ScoredTable, string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	log := logger.Named("score")
	start := time.Now()

	sheet, err := ingest.Load(path, cfg.Sheet)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", path, err)
	}
	cols := cfg.Columns
	raw, err := ingest.Decode(sheet, ingest.Schema{
		Team:     cols.Team,
		MatchDay: cols.MatchDay,
		Date:     cols.Date,
		Player:   cols.Player,
		Position: cols.Position,
		Load:     cols.Load,
		Metrics:  cfg.Metrics,
	})
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}

	key := storage.Fingerprint{
		SourceHash: sheet.Hash,
		Sheet:      cfg.Sheet,
		Team:       cfg.Team,
		Marker:     cfg.MatchDayMarker,
		GroupBy:    cfg.Grouping(),
		Policy:     cfg.Policy(),
		Columns:    []string{cols.Team, cols.MatchDay, cols.Date, cols.Player, cols.Position},
		Metrics:    raw.Metrics,
		Load:       raw.Load,
	}.Key()

	var db *storage.DB
	if !noCache {
		db, err = openDB()
		if err != nil {
			return nil, "", err
		}
		defer db.Close()

		exists, err := db.DatasetExists(key)
		if err != nil {
			return nil, "", fmt.Errorf("check dataset: %w", err)
		}
		counter.CacheLookup(exists)
		if exists {
			table, err := db.LoadTable(key)
			if err != nil {
				return nil, "", fmt.Errorf("load cached dataset: %w", err)
			}
			if table != nil {
				log.Info(ctx, "using cached result", logger.String("key", key[:12]), logger.Int("rows", len(table.Rows)))
				return table, key, nil
			}
		}
	}

	runID := uuid.NewString()
	table, err := pipeline.Run(ctx, raw,
		pipeline.WithTeam(cfg.Team),
		pipeline.WithMarker(cfg.MatchDayMarker),
		pipeline.WithGroupBy(cfg.Grouping()),
		pipeline.WithSingletonPolicy(cfg.Policy()),
		pipeline.WithLogger(log.With(logger.String("run_id", runID))),
		pipeline.WithMetrics(counter),
	)
	if err != nil {
		return nil, "", fmt.Errorf("score %s: %w", path, err)
	}

	if db != nil {
		ds := model.Dataset{
			Key:        key,
			RunID:      runID,
			Source:     sheet.Source,
			SourceHash: sheet.Hash,
			Policy:     cfg.Policy(),
		}
		if err := db.SaveTable(ds, table); err != nil {
			return nil, "", fmt.Errorf("save dataset: %w", err)
		}
	}
	log.Debug(ctx, "file scored", logger.String("run_id", runID), logger.Any("elapsed", time.Since(start)))
	return table, key, nil
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
