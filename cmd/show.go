package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/report"
)

var (
	showLimit  int
	showPlayer string
)

var showCmd = &cobra.Command{
	Use:   "show <key-prefix>",
	Short: "Show a cached scored table by key prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 50, "max rows to print (0 = all)")
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight this player's rows")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ds, err := db.GetDatasetByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query dataset: %w", err)
	}
	if ds == nil {
		fmt.Fprintf(os.Stderr, "No dataset found with key prefix %q\n", prefix)
		return nil
	}

	table, err := db.LoadTable(ds.Key)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if table == nil {
		return fmt.Errorf("dataset %s vanished while reading", ds.Key[:12])
	}
	report.PrintTableSummary(os.Stdout, table, ds.Key)
	report.PrintSessionTable(os.Stdout, table, showPlayer, showLimit)
	return nil
}
