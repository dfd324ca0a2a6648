package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/report"
)

var playersCmd = &cobra.Command{
	Use:   "players <sessions.xlsx|csv>",
	Short: "List the players of the configured team, most recently active first",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayers,
}

func runPlayers(cmd *cobra.Command, args []string) error {
	table, _, err := scoreFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		fmt.Fprintf(os.Stdout, "No sessions for team %q.\n", cfg.Team)
		return nil
	}
	report.PrintPlayerList(os.Stdout, table)
	return nil
}
