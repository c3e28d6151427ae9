package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"retag/internal/config"
	"retag/internal/logger"
)

var cfgFile string
var verbose bool
var logFile string

var rootCmd = &cobra.Command{
	Use:   "retag",
	Short: "Relabel proxy share-links (vless, vmess, trojan, ss, Telegram MTProto) in bulk",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(verbose, logFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}
	return cfg
}

var errEmptyTag = errors.New("tag must not be empty (set 'tag' in config or pass --tag)")

// resolveTag returns override when the --tag flag was given and the configured
// tag otherwise. An empty tag is rejected.
func resolveTag(configured, override string, overridden bool) (string, error) {
	tag := configured
	if overridden {
		tag = override
	}
	if tag == "" {
		return "", errEmptyTag
	}
	return tag, nil
}

// applyParams copies --param overrides into every params map, turning
// numeric and boolean values into their yaml types.
func applyParams(target map[string]interface{}, overrides map[string]string) map[string]interface{} {
	if target == nil {
		target = make(map[string]interface{})
	}
	for k, v := range overrides {
		if intVal, err := strconv.Atoi(v); err == nil {
			target[k] = intVal
		} else if boolVal, err := strconv.ParseBool(v); err == nil {
			target[k] = boolVal
		} else {
			target[k] = v
		}
	}
	return target
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr (overwrites file)")
}
