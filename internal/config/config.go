// Package config loads chatgpt-stats settings from an optional YAML file,
// then the environment. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jnspo1/chatgpt-stats/internal"
)

const (
	DefaultConversations = "conversations.json"
	DefaultOutputDir     = "chat_analytics"
	DefaultListen        = "127.0.0.1:8203"
	DefaultTemplate      = "web/dashboard_template.html"
	DefaultCacheTTL      = time.Hour
	DefaultTopDays       = 10
	DefaultTopGaps       = 25
	DefaultRefreshEvery  = 10 * time.Second
	DefaultRefreshBurst  = 3
	DefaultLogLevel      = "info"
)

// Config holds every tunable setting
type Config struct {
	Conversations  string   `yaml:"conversations"`
	Timezone       string   `yaml:"timezone"`
	OutputDir      string   `yaml:"output_dir"`
	CacheDir       string   `yaml:"cache_dir"`
	Listen         string   `yaml:"listen"`
	Template       string   `yaml:"template"`
	CacheTTL       Duration `yaml:"cache_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReferenceDate  string   `yaml:"reference_date"`
	TopDaysPerYear int      `yaml:"top_days_per_year"`
	TopGapsPerYear int      `yaml:"top_gaps_per_year"`
	RefreshEvery   Duration `yaml:"refresh_every"`
	RefreshBurst   int      `yaml:"refresh_burst"`
	LogLevel       string   `yaml:"log_level"`
	Dedupe         bool     `yaml:"dedupe"`
}

// Duration is a time.Duration written as a string such as "1h" in YAML
type Duration struct {
	time.Duration
}

// Set parses a duration string such as "90s"
func (d *Duration) Set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// UnmarshalYAML parses a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.Set(s)
}

// MarshalYAML writes the duration string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Conversations:  DefaultConversations,
		OutputDir:      DefaultOutputDir,
		CacheDir:       defaultCacheDir(),
		Listen:         DefaultListen,
		Template:       DefaultTemplate,
		CacheTTL:       Duration{DefaultCacheTTL},
		TopDaysPerYear: DefaultTopDays,
		TopGapsPerYear: DefaultTopGaps,
		RefreshEvery:   Duration{DefaultRefreshEvery},
		RefreshBurst:   DefaultRefreshBurst,
		LogLevel:       DefaultLogLevel,
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".chatgpt-stats-cache"
	}
	return dir + string(os.PathSeparator) + "chatgpt-stats"
}

// Load starts from Default, overlays the YAML file at path when path is
// non-empty, then applies environment overrides
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Conversations = envStr("CHATGPT_STATS_CONVERSATIONS", c.Conversations)
	c.Timezone = envStr("CHATGPT_STATS_TZ", c.Timezone)
	c.OutputDir = envStr("CHATGPT_STATS_OUTPUT_DIR", c.OutputDir)
	c.CacheDir = envStr("CHATGPT_STATS_CACHE_DIR", c.CacheDir)
	c.Listen = envStr("CHATGPT_STATS_LISTEN", c.Listen)
	c.Template = envStr("CHATGPT_STATS_TEMPLATE", c.Template)
	c.CacheTTL.Duration = envDuration("CHATGPT_STATS_CACHE_TTL", c.CacheTTL.Duration)
	c.AllowedOrigins = envList("CHATGPT_STATS_ALLOWED_ORIGINS", c.AllowedOrigins)
	c.ReferenceDate = envStr("CHATGPT_STATS_REFERENCE_DATE", c.ReferenceDate)
	c.TopDaysPerYear = envInt("CHATGPT_STATS_TOP_DAYS", c.TopDaysPerYear)
	c.TopGapsPerYear = envInt("CHATGPT_STATS_TOP_GAPS", c.TopGapsPerYear)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.CacheTTL.Duration <= 0 {
		return errors.New("cache_ttl must be positive")
	}
	if c.TopDaysPerYear <= 0 || c.TopGapsPerYear <= 0 {
		return errors.New("top_days_per_year and top_gaps_per_year must be positive")
	}
	if c.RefreshEvery.Duration <= 0 || c.RefreshBurst <= 0 {
		return errors.New("refresh_every and refresh_burst must be positive")
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("listen address is empty")
	}
	if _, err := internal.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Location loads the configured zone; empty means the local zone
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Reference parses the comparison reference date; zero when unset
func (c Config) Reference() (time.Time, error) {
	if c.ReferenceDate == "" {
		return time.Time{}, nil
	}
	t, err := internal.ParseDate(c.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q: %w", c.ReferenceDate, err)
	}
	return t, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
