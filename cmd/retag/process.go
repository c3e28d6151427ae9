package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"retag/internal/collectors"
	"retag/internal/collectors/file"
	"retag/internal/config"
	"retag/internal/engine"
	"retag/internal/geoip"
	"retag/internal/journal"
	"retag/internal/logger"
	"retag/internal/metrics"
	"retag/internal/parser"
	"retag/internal/publishers"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagTag          string
	flagCollectors   []string
	flagPublishers   []string
	flagDedupe       bool
	flagFailuresPath string
	flagNoProgress   bool
	flagNoReport     bool
	collectParams    map[string]string
	publishParams    map[string]string
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Relabel every link from files or configured collectors",
	Long: `Reads lines from the given files ("-" for stdin) or, when no file is given,
from the collectors defined in config. Every line is classified, decoded and
re-encoded with the new tag. Failures never stop the batch; they are reported
with a short reason and can be written to a TSV file with --failures.

Relabeled links go to the configured publishers (stdout when none are set).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		tag, err := resolveTag(cfg.Tag, flagTag, cmd.Flags().Changed("tag"))
		if err != nil {
			logger.Log.Fatal(err)
		}
		cfg.Tag = tag
		if cmd.Flags().Changed("dedupe") {
			cfg.Engine.Dedupe = flagDedupe
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// 1. Gather lines
		lines, sources, err := gatherLines(ctx, cfg, args)
		if err != nil {
			logger.Log.Fatalf("Error reading input: %v", err)
		}
		if len(lines) == 0 {
			logger.Log.Warn("No input lines found.")
			return
		}
		if cfg.Engine.Dedupe {
			before := len(lines)
			lines = parser.Deduplicate(lines)
			logger.Log.Infof("🧹 Removed %d duplicate lines.", before-len(lines))
		}

		// 2. Report setup
		var country metrics.CountryFunc
		if cfg.Report.GeoIPCountryPath != "" {
			if err := geoip.Init(cfg.Report.GeoIPCountryPath); err != nil {
				logger.Log.Warnf("%v. Country data will be missing.", err)
			} else {
				defer geoip.Close()
				country = geoip.Lookup
			}
		}
		stats := metrics.New(country)

		// 3. Run the batch
		logger.Log.Infof("🏷️  Relabeling %d lines with tag %q...", len(lines), cfg.Tag)
		started := time.Now()
		res, err := runBatch(ctx, cfg, lines, stats, !flagNoProgress)
		if err != nil {
			logger.Log.Fatalf("Batch aborted: %v", err)
		}
		elapsed := time.Since(started)
		logger.Log.Infof("✅ Batch finished in %s: %d relabeled, %d failed.", elapsed.Round(time.Millisecond), res.Succeeded, res.Failed)

		// 4. Failures
		if flagFailuresPath != "" {
			if err := writeFailures(flagFailuresPath, res.Failures); err != nil {
				logger.Log.Errorf("Failed to write failures: %v", err)
			} else {
				logger.Log.Infof("📝 Wrote %d failures to %s", len(res.Failures), flagFailuresPath)
			}
		}

		// 5. Publish
		publish(ctx, cfg, res.Ordered())

		// 6. Journal
		if cfg.Journal.Path != "" {
			recordRun(cfg, journal.Entry{
				Tag:       cfg.Tag,
				Sources:   sources,
				Total:     res.Total,
				Succeeded: res.Succeeded,
				Failed:    res.Failed,
				StartedAt: started,
				Duration:  elapsed,
				Protocols: stats.Protocols(),
			})
		}

		if !flagNoReport {
			stats.PrintReport(os.Stderr)
		}
	},
}

// gatherLines reads file arguments, or runs the configured collectors when
// there are none. It also returns a name per source for the journal.
func gatherLines(ctx context.Context, cfg *config.Config, args []string) ([]string, []string, error) {
	var lines, sources []string

	if len(args) > 0 {
		for _, path := range args {
			found, err := file.ReadPath(path)
			if err != nil {
				return nil, nil, err
			}
			logger.Log.Infof("📄 %s: %d lines", path, len(found))
			lines = append(lines, found...)
			sources = append(sources, "file:"+path)
		}
		return lines, sources, nil
	}

	cfg.FilterCollectors(flagCollectors)
	if len(cfg.Collectors) == 0 {
		return nil, nil, fmt.Errorf("no input files given and no collectors configured")
	}

	for _, cCfg := range cfg.Collectors {
		logger.Log.Infof("🏃 Running collector: %s (%s)...", cCfg.Name, cCfg.Type)

		collector, err := collectors.Get(cCfg.Type)
		if err != nil {
			logger.Log.Warnf("Skipping: %v", err)
			continue
		}

		params := applyParams(cCfg.Params, collectParams)
		if cfg.Network.ProxyURL != "" {
			params[collectors.ProxyParam] = cfg.Network.ProxyURL
		}

		found, err := collector.Collect(ctx, params)
		if err != nil {
			logger.Log.Errorf("Error running collector %s: %v", cCfg.Name, err)
			continue
		}
		logger.Log.Infof("    ↳ %s: %d lines", cCfg.Name, len(found))
		lines = append(lines, found...)
		sources = append(sources, cCfg.Name)
	}
	return lines, sources, nil
}

// runBatch submits lines to the engine and consumes the stream, feeding the
// progress bar and stats as events arrive.
func runBatch(ctx context.Context, cfg *config.Config, lines []string, stats *metrics.Collector, showProgress bool) (*engine.Results, error) {
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(lines),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription("[cyan]Relabeling...[reset]"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
		defer func() {
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)
		}()
	}

	consumer := &engine.Consumer{
		Interval: cfg.Engine.PollInterval,
		OnRecord: func(_ int, rec *parser.Record) {
			stats.RecordSuccess(rec)
		},
		OnFailure: func(f engine.Failure) {
			stats.RecordFailure(f.Reason)
			logger.Log.Debugf("❌ %s | %s", truncateLine(f.Line), f.Reason)
		},
		OnProgress: func(p engine.ProgressEvent) {
			if bar != nil {
				_ = bar.Set(p.Completed)
			}
		},
	}

	stream := engine.NewProcessor(nil, cfg.Engine.Buffer).Submit(lines, cfg.Tag)
	return consumer.Run(ctx, stream)
}

func publish(ctx context.Context, cfg *config.Config, records []*parser.Record) {
	cfg.FilterPublishers(flagPublishers)
	targets := cfg.Publishers
	if len(targets) == 0 {
		targets = []config.PublisherConfig{{Name: "stdout", Type: "stdout", Params: map[string]interface{}{"raw": true}}}
	}

	for _, pubCfg := range targets {
		logger.Log.Infof("📨 Running Publisher: %s (%s)...", pubCfg.Name, pubCfg.Type)

		plugin, err := publishers.Get(pubCfg.Type)
		if err != nil {
			logger.Log.Warnf("Plugin not found: %v", err)
			continue
		}

		params := applyParams(pubCfg.Params, publishParams)
		if cfg.Network.ProxyURL != "" {
			params[collectors.ProxyParam] = cfg.Network.ProxyURL
		}
		if err := plugin.Publish(ctx, records, params); err != nil {
			logger.Log.Errorf("Publisher %s failed: %v", pubCfg.Name, err)
		}
	}
}

func writeFailures(path string, failures []engine.Failure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := publishers.WriteFailures(f, failures); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordRun(cfg *config.Config, entry journal.Entry) {
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Log.Errorf("Journal unavailable: %v", err)
		return
	}
	defer j.Close()

	id, err := j.Record(entry)
	if err != nil {
		logger.Log.Errorf("Journal: %v", err)
		return
	}
	logger.Log.Debugf("Journal: stored run #%d", id)

	if _, err := j.Prune(cfg.Journal.MaxRuns); err != nil {
		logger.Log.Warnf("Journal prune failed: %v", err)
	}
}

func truncateLine(line string) string {
	const limit = 60
	line = strings.TrimSpace(line)
	if len(line) <= limit {
		return line
	}
	return line[:limit] + "..."
}

func init() {
	processCmd.Flags().StringVarP(&flagTag, "tag", "t", "", "New tag (overrides config 'tag')")
	processCmd.Flags().StringSliceVarP(&flagCollectors, "collector", "c", nil, "Only run these collectors")
	processCmd.Flags().StringSliceVar(&flagPublishers, "publisher", nil, "Only run these publishers")
	processCmd.Flags().BoolVar(&flagDedupe, "dedupe", true, "Drop repeated lines before processing (overrides engine.dedupe; --dedupe=false keeps them)")
	processCmd.Flags().StringVar(&flagFailuresPath, "failures", "", "Write failed lines and reasons to this TSV file")
	processCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "Hide the progress bar")
	processCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Skip the end-of-run report")
	processCmd.Flags().StringToStringVarP(&collectParams, "param", "p", nil, "Override collector params")
	processCmd.Flags().StringToStringVar(&publishParams, "publish-param", nil, "Override publisher params")
	rootCmd.AddCommand(processCmd)
}
