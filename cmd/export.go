package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <sessions.xlsx|csv> --out <file.xlsx|csv>",
	Short: "Write the full enriched table (aggregates, indicators, fatigue) to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path; the extension picks xlsx or csv")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	table, _, err := scoreFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := export.File(exportOut, table); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d sessions to %s\n", len(table.Rows), exportOut)
	return nil
}
