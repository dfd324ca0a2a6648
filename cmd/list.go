package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cached datasets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	datasets, err := db.ListDatasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	if len(datasets) == 0 {
		fmt.Fprintln(os.Stdout, "No datasets cached yet. Run 'loadmetrics score <sessions.xlsx>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-9s  %-11s  %5s  %s\n",
		"KEY", "CREATED", "TEAM", "GROUP", "SINGLETONS", "ROWS", "SOURCE")
	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-9s  %-11s  %5s  %s\n",
		"──────────────", "────────────────", "────────────────", "─────────", "───────────", "─────", "──────")
	for _, d := range datasets {
		fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-16s  %-9s  %-11s  %5d  %s\n",
			d.Key[:12], d.CreatedAt.Local().Format("2006-01-02 15:04"), d.Team, d.GroupBy, d.Policy, d.Rows, d.Source)
	}
	return nil
}
