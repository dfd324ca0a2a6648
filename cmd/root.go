package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-load-metrics/internal/config"
	"github.com/pable/go-load-metrics/internal/logger"
	"github.com/pable/go-load-metrics/internal/metrics"
	"github.com/pable/go-load-metrics/internal/model"
)

var (
	configPath  string
	dbPath      string
	logLevel    string
	metricsFile string
	teamFlag    string
	groupByFlag string
	legacyDrop  bool
	noCache     bool
	noColor     bool

	cfg     *config.Config
	counter *metrics.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "loadmetrics",
	Short: "Athlete training load and fatigue tool",
	Long: `Ingest GPS training-session exports (XLSX or CSV), keep one canonical session per
player and day, and score each session against its match-day group's reference distribution.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to YAML config (default $LOADMETRICS_CONFIG)")
	pf.StringVar(&dbPath, "db", "", "path to SQLite cache database (default ~/.loadmetrics/cache.db)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&metricsFile, "metrics-file", "", "write pipeline counters to this file in Prometheus text format")
	pf.StringVar(&teamFlag, "team", "", "team whose sessions are scored")
	pf.StringVar(&groupByFlag, "group-by", "", "reference grouping next to match day: position or player")
	pf.BoolVar(&legacyDrop, "legacy-drop", false, "drop players with a single entry on a day instead of keeping it")
	pf.BoolVar(&noCache, "no-cache", false, "always recompute; do not read or write the cache")
	pf.BoolVar(&noColor, "no-color", false, "disable colored markers")

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads configuration (defaults, file, env), applies explicit flags on
// top and initializes logging and counters.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("metrics-file") {
		c.MetricsFile = metricsFile
	}
	if flags.Changed("team") {
		c.Team = teamFlag
	}
	if flags.Changed("group-by") {
		c.GroupBy = groupByFlag
	}
	if legacyDrop {
		c.SingletonPolicy = string(model.SingletonLegacyDrop)
	}
	if flags.Changed("db") {
		c.CachePath = dbPath
	}
	dbPath = c.CachePath
	cfg = c

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if noColor {
		color.NoColor = true
	}
	counter = metrics.New()
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if cfg == nil || cfg.MetricsFile == "" {
		return nil
	}
	if err := counter.WriteTextfile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Named("cmd").Debug(cmd.Context(), "metrics written", logger.String("path", cfg.MetricsFile))
	return nil
}
