package main

import (
	"strconv"

	"retag/internal/journal"
	"retag/internal/logger"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune [limit]",
	Short: "Shrink the run journal to the newest runs",
	Long: `Removes the oldest runs (and their protocol counts) until the journal holds
the target number of runs. If no limit is provided, 'journal.max_runs' from
config.yaml is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Config
		cfg := loadConfig()
		if cfg.Journal.Path == "" {
			logger.Log.Fatal("Journal is disabled (set journal.path or RETAG_JOURNAL_PATH).")
		}

		// 2. Parse Argument (Optional Override)
		limit := cfg.Journal.MaxRuns
		if len(args) > 0 {
			val, err := strconv.Atoi(args[0])
			if err != nil || val < 0 {
				logger.Log.Fatalf("Invalid limit argument: %q", args[0])
			}
			limit = val
			logger.Log.Infof("🎯 Pruning target manually set to: %d", limit)
		}

		// 3. Open Journal
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Log.Fatalf("Error opening journal: %v", err)
		}
		defer j.Close()

		// 4. Run Pruner
		removed, err := j.Prune(limit)
		if err != nil {
			logger.Log.Errorf("Pruning failed: %v", err)
			return
		}
		logger.Log.Infof("✅ Journal maintenance complete. Removed %d runs.", removed)
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
