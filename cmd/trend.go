package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/report"
)

var trendDays int

var trendCmd = &cobra.Command{
	Use:   "trend <sessions.xlsx|csv> <player>",
	Short: "Recent fatigue scores for a player against the group band",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().IntVar(&trendDays, "days", 10, "number of most recent sessions to show (0 = all)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	table, _, err := scoreFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	player := args[1]
	rows := table.Window(player, trendDays)
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No sessions found for player %q\n", player)
		return nil
	}
	report.PrintTrendTable(os.Stdout, player, rows)
	return nil
}
