package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"retag/internal/journal"
	"retag/internal/logger"

	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent runs from the journal",
	Long:  `Displays a dashboard of the run journal: file size, the most recent batches and the protocol totals over every stored run.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Config & Journal
		cfg := loadConfig()
		if cfg.Journal.Path == "" {
			logger.Log.Fatal("Journal is disabled (set journal.path or RETAG_JOURNAL_PATH).")
		}

		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Log.Fatalf("Error opening journal: %v", err)
		}
		defer j.Close()

		// 2. Gather Stats
		count, err := j.Count()
		if err != nil {
			logger.Log.Fatalf("Error reading journal: %v", err)
		}
		runs, err := j.Recent(statusLimit)
		if err != nil {
			logger.Log.Fatalf("Error reading journal: %v", err)
		}
		totals, err := j.ProtocolTotals()
		if err != nil {
			logger.Log.Fatalf("Error reading journal: %v", err)
		}

		// 3. Print Dashboard
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Println("\n📊 \033[1mRETAG STATUS DASHBOARD\033[0m")
		fmt.Println("────────────────────────────────────────")

		fmt.Fprintln(w, "\033[1;36m[ JOURNAL ]\033[0m\t")
		fmt.Fprintf(w, "  Path:\t%s\n", cfg.Journal.Path)
		fmt.Fprintf(w, "  Size:\t%s\n", formatBytes(getFileSize(cfg.Journal.Path)))
		fmt.Fprintf(w, "  Stored Runs:\t%d (max %d)\n", count, cfg.Journal.MaxRuns)
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ RECENT RUNS ]\033[0m\t")
		if len(runs) == 0 {
			fmt.Fprintln(w, "  (No runs recorded)")
		}
		for _, r := range runs {
			fmt.Fprintf(w, "  #%d %s\t%d/%d ok\t%d failed\ttag %q\t%s\t%s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Succeeded, r.Total, r.Failed,
				r.Tag, r.Duration.Round(time.Millisecond), r.Sources)
		}
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ PROTOCOLS ]\033[0m\t")
		for _, t := range totals {
			fmt.Fprintf(w, "  %s:\t%d\n", t.Protocol, t.Count)
		}

		w.Flush()
		fmt.Println("")
	},
}

func getFileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "Number of recent runs to show")
	rootCmd.AddCommand(statusCmd)
}
