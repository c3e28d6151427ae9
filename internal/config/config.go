package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. Unlike an explicit
// path, it may be missing.
const DefaultPath = "config.yaml"

type Config struct {
	Tag        string            `yaml:"tag"`
	Engine     EngineConfig      `yaml:"engine"`
	Network    NetworkConfig     `yaml:"network"`
	Journal    JournalConfig     `yaml:"journal"`
	Report     ReportConfig      `yaml:"report"`
	Collectors []CollectorConfig `yaml:"collectors"`
	Publishers []PublisherConfig `yaml:"publishers"`
}

type EngineConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Buffer       int           `yaml:"buffer"` // 0 = room for the whole batch
	Dedupe       bool          `yaml:"dedupe"`
}

type NetworkConfig struct {
	ProxyURL string `yaml:"proxy_url"` // socks5:// or http:// used by collectors
}

type JournalConfig struct {
	Path    string `yaml:"path"` // empty disables the journal
	MaxRuns int    `yaml:"max_runs"`
}

type ReportConfig struct {
	GeoIPCountryPath string `yaml:"geoip_country_path"`
}

type CollectorConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

type PublisherConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Tag: "retag",
		Engine: EngineConfig{
			PollInterval: 100 * time.Millisecond,
			Dedupe:       true,
		},
		Journal: JournalConfig{
			MaxRuns: 100,
		},
	}
}

// Load reads the yaml file at path (DefaultPath when empty), then applies
// .env and environment overrides.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config yaml: %w", err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is fine.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RETAG_TAG"); v != "" {
		c.Tag = v
	}
	if v := os.Getenv("RETAG_PROXY_URL"); v != "" {
		c.Network.ProxyURL = v
	}
	if v := os.Getenv("RETAG_JOURNAL_PATH"); v != "" {
		c.Journal.Path = v
	}

	apiHash := os.Getenv("TELEGRAM_API_HASH")
	var apiID int
	if v := os.Getenv("TELEGRAM_API_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_API_ID %q: %w", v, err)
		}
		apiID = id
	}

	for i := range c.Collectors {
		col := &c.Collectors[i]
		if col.Type != "telegram" {
			continue
		}
		if col.Params == nil {
			col.Params = make(map[string]interface{})
		}
		if _, ok := col.Params["api_id"]; !ok && apiID != 0 {
			col.Params["api_id"] = apiID
		}
		if _, ok := col.Params["api_hash"]; !ok && apiHash != "" {
			col.Params["api_hash"] = apiHash
		}
	}
	return nil
}

func (c *Config) normalize() {
	if c.Engine.PollInterval <= 0 {
		c.Engine.PollInterval = 100 * time.Millisecond
	}
	if c.Engine.Buffer < 0 {
		c.Engine.Buffer = 0
	}
	if c.Journal.MaxRuns <= 0 {
		c.Journal.MaxRuns = 100
	}
	for i := range c.Collectors {
		if c.Collectors[i].Name == "" {
			c.Collectors[i].Name = c.Collectors[i].Type
		}
	}
	for i := range c.Publishers {
		if c.Publishers[i].Name == "" {
			c.Publishers[i].Name = c.Publishers[i].Type
		}
	}
}

func (c *Config) FilterCollectors(names []string) {
	if len(names) == 0 {
		return
	}
	whitelist := whitelistOf(names)
	var filtered []CollectorConfig
	for _, item := range c.Collectors {
		if whitelist[item.Name] {
			filtered = append(filtered, item)
		}
	}
	c.Collectors = filtered
}

func (c *Config) FilterPublishers(names []string) {
	if len(names) == 0 {
		return
	}
	whitelist := whitelistOf(names)
	var filtered []PublisherConfig
	for _, item := range c.Publishers {
		if whitelist[item.Name] {
			filtered = append(filtered, item)
		}
	}
	c.Publishers = filtered
}

func whitelistOf(names []string) map[string]bool {
	whitelist := make(map[string]bool, len(names))
	for _, n := range names {
		whitelist[n] = true
	}
	return whitelist
}
