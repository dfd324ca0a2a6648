package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Query cached datasets and scored sessions with SQL",
	Long: `Run a read query over the scored datasets kept in the cache and print the
result. Missing metric values and undefined reference aggregates are NULL and
print as "—".

Tables:
  datasets         one row per scored export: key, run_id, source, source_hash,
                   team, group_by, policy, load_metric, row_count, created_at
  dataset_metrics  tracked metric names per dataset: dataset_key, idx, name
  sessions         canonical sessions in output order: dataset_key, seq,
                   source_row, team, player, position, match_day_label,
                   match_day, session_date, fatigue and its fatigue_min,
                   fatigue_max, fatigue_mean, fatigue_std, fatigue_p15,
                   fatigue_count reference
  session_metrics  per-metric value, indicator and ref_min, ref_max, ref_mean,
                   ref_std, ref_p15, ref_count: dataset_key, seq, metric_idx

Example, a player's fatigue over time:
  loadmetrics sql "SELECT session_date, match_day, fatigue FROM sessions
    WHERE player = 'Ana García' ORDER BY seq"

Join session_metrics to dataset_metrics on dataset_key and metric_idx = idx
for metric names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return err
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
