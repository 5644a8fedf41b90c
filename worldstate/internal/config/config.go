// Package config handles worldstate configuration from a YAML file, with
// defaults for every field and a few environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ffhgterh111-hub/LFGWarframeMain/netsafe"
)

// Default source pages.
const (
	DefaultFissuresURL    = "https://browse.wf/live"
	DefaultArbitrationURL = "https://browse.wf/arbys#days=30&tz=utc&hourfmt=24"
)

// DefaultTierURLs are the log page filtered down to a single tier.
var DefaultTierURLs = map[string]string{
	"S": "https://browse.wf/arbys#days=30&tz=local&hourfmt=mil&exclude=tier-A.tier-B.tier-C.tier-D.tier-F",
	"A": "https://browse.wf/arbys#days=30&tz=local&hourfmt=mil&exclude=tier-S.tier-B.tier-C.tier-D.tier-F",
	"B": "https://browse.wf/arbys#days=30&tz=local&hourfmt=mil&exclude=tier-S.tier-A.tier-C.tier-D.tier-F",
}

// Environment overrides, applied after the file.
const (
	EnvFissuresURL    = "WS_FISSURES_URL"
	EnvArbitrationURL = "WS_ARBITRATION_URL"
	EnvListen         = "WS_LISTEN"
	EnvEngine         = "WS_ENGINE"
	EnvBrowserRemote  = "WS_BROWSER_REMOTE"
)

// Config is the top-level worldstate configuration.
type Config struct {
	Listen    string           `yaml:"listen"`
	Sources   SourcesConfig    `yaml:"sources"`
	Fetch     FetchConfig      `yaml:"fetch"`
	Browser   BrowserConfig    `yaml:"browser"`
	Cache     CacheConfig      `yaml:"cache"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Refresh   RefreshConfig    `yaml:"refresh"`
	Parser    ParserConfig     `yaml:"parser"`
	Notifiers []NotifierConfig `yaml:"notifiers"`
}

// SourcesConfig lists the pages to scrape.
type SourcesConfig struct {
	Fissures    string            `yaml:"fissures"`
	Arbitration string            `yaml:"arbitration"`
	Tiers       map[string]string `yaml:"tiers"` // tier letter -> filtered log URL
}

// FetchConfig controls page loading and retries.
type FetchConfig struct {
	Engine         string        `yaml:"engine"` // browser | http
	Timeout        time.Duration `yaml:"timeout"`
	ReadyTimeout   time.Duration `yaml:"ready_timeout"`
	Settle         time.Duration `yaml:"settle"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	UserAgent      string        `yaml:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Bin              string        `yaml:"bin"`
	Headful          bool          `yaml:"headful"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	ViewportWidth    int           `yaml:"viewport_width"`
	ViewportHeight   int           `yaml:"viewport_height"`
}

// CacheConfig holds per-category time-to-live values.
type CacheConfig struct {
	FissuresTTL    time.Duration `yaml:"fissures_ttl"`
	SteelPathTTL   time.Duration `yaml:"steel_path_ttl"`
	ArbitrationTTL time.Duration `yaml:"arbitration_ttl"`
	TierTTL        time.Duration `yaml:"tier_ttl"`
}

// SchedulerConfig controls the two loops.
type SchedulerConfig struct {
	ScrapeInterval   time.Duration `yaml:"scrape_interval"`
	MinInterval      time.Duration `yaml:"min_interval"`
	ErrorBackoff     time.Duration `yaml:"error_backoff"`
	NotifyInterval   time.Duration `yaml:"notify_interval"`
	CacheReuseWindow time.Duration `yaml:"cache_reuse_window"`
}

// RefreshConfig paces manual refreshes. A zero Interval, the default,
// leaves them unpaced.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst"`
}

// ParserConfig selects the mission type table.
type ParserConfig struct {
	Locale string `yaml:"locale"` // en | ru
}

// NotifierConfig defines a change notification backend.
type NotifierConfig struct {
	Type    string        `yaml:"type"` // stdout | webhook
	URL     string        `yaml:"url"`  // for webhook
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
	// AllowPrivate permits loopback and private-network webhook targets.
	AllowPrivate bool `yaml:"allow_private"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads path when it is non-empty, else starts from defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv in
// production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvFissuresURL); v != "" {
		c.Sources.Fissures = v
	}
	if v := getenv(EnvArbitrationURL); v != "" {
		c.Sources.Arbitration = v
	}
	if v := getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := getenv(EnvEngine); v != "" {
		c.Fetch.Engine = v
	}
	if v := getenv(EnvBrowserRemote); v != "" {
		c.Browser.Remote = v
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Fetch.Engine {
	case "browser", "http":
	default:
		return fmt.Errorf("config: unknown fetch engine %q", c.Fetch.Engine)
	}
	if c.Sources.Fissures == "" || c.Sources.Arbitration == "" {
		return errors.New("config: source URLs are required")
	}
	for name, u := range c.sourceURLs() {
		if err := netsafe.CheckURL(u, true); err != nil {
			return fmt.Errorf("config: source %s: %w", name, err)
		}
	}
	if c.Scheduler.MinInterval > c.Scheduler.ScrapeInterval {
		return fmt.Errorf("config: min_interval %s exceeds scrape_interval %s",
			c.Scheduler.MinInterval, c.Scheduler.ScrapeInterval)
	}
	for i, n := range c.Notifiers {
		switch n.Type {
		case "stdout":
		case "webhook":
			if n.URL == "" {
				return fmt.Errorf("config: notifier %d: webhook needs a url", i)
			}
			if err := netsafe.CheckURL(n.URL, n.AllowPrivate); err != nil {
				return fmt.Errorf("config: notifier %d: %w", i, err)
			}
		default:
			return fmt.Errorf("config: notifier %d: unknown type %q", i, n.Type)
		}
	}
	return nil
}

func (c *Config) sourceURLs() map[string]string {
	out := map[string]string{
		"fissures":    c.Sources.Fissures,
		"arbitration": c.Sources.Arbitration,
	}
	for tier, u := range c.Sources.Tiers {
		out["tier "+tier] = u
	}
	return out
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Sources.Fissures == "" {
		c.Sources.Fissures = DefaultFissuresURL
	}
	if c.Sources.Arbitration == "" {
		c.Sources.Arbitration = DefaultArbitrationURL
	}
	if c.Sources.Tiers == nil {
		c.Sources.Tiers = make(map[string]string, len(DefaultTierURLs))
		for k, v := range DefaultTierURLs {
			c.Sources.Tiers[k] = v
		}
	}

	if c.Fetch.Engine == "" {
		c.Fetch.Engine = "browser"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.ReadyTimeout <= 0 {
		c.Fetch.ReadyTimeout = 15 * time.Second
	}
	if c.Fetch.Settle <= 0 {
		c.Fetch.Settle = time.Second
	}
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = 2
	}
	if c.Fetch.RetryDelay <= 0 {
		c.Fetch.RetryDelay = 3 * time.Second
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Fetch.AcceptLanguage == "" {
		c.Fetch.AcceptLanguage = "en-US,en;q=0.9"
	}

	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.ResourceBlocking == nil {
		c.Browser.ResourceBlocking = []string{"image", "font", "media"}
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1920
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 1080
	}

	if c.Cache.FissuresTTL <= 0 {
		c.Cache.FissuresTTL = 120 * time.Second
	}
	if c.Cache.SteelPathTTL <= 0 {
		c.Cache.SteelPathTTL = 120 * time.Second
	}
	if c.Cache.ArbitrationTTL <= 0 {
		c.Cache.ArbitrationTTL = 300 * time.Second
	}
	if c.Cache.TierTTL <= 0 {
		c.Cache.TierTTL = 30 * time.Minute
	}

	if c.Scheduler.ScrapeInterval <= 0 {
		c.Scheduler.ScrapeInterval = 5 * time.Second
	}
	if c.Scheduler.MinInterval <= 0 {
		c.Scheduler.MinInterval = 3 * time.Second
	}
	if c.Scheduler.ErrorBackoff <= 0 {
		c.Scheduler.ErrorBackoff = 10 * time.Second
	}
	if c.Scheduler.NotifyInterval <= 0 {
		c.Scheduler.NotifyInterval = 15 * time.Second
	}
	if c.Scheduler.CacheReuseWindow <= 0 {
		c.Scheduler.CacheReuseWindow = 60 * time.Second
	}

	if c.Refresh.Interval < 0 {
		c.Refresh.Interval = 0
	}
	if c.Refresh.Burst <= 0 {
		c.Refresh.Burst = 1
	}

	if c.Parser.Locale == "" {
		c.Parser.Locale = "en"
	}

	for i := range c.Notifiers {
		if c.Notifiers[i].Retries <= 0 {
			c.Notifiers[i].Retries = 3
		}
		if c.Notifiers[i].Timeout <= 0 {
			c.Notifiers[i].Timeout = 10 * time.Second
		}
	}
}
