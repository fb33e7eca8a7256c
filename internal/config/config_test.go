package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"CHATGPT_STATS_CONVERSATIONS", "CHATGPT_STATS_TZ", "CHATGPT_STATS_OUTPUT_DIR",
	"CHATGPT_STATS_CACHE_DIR", "CHATGPT_STATS_LISTEN", "CHATGPT_STATS_TEMPLATE",
	"CHATGPT_STATS_CACHE_TTL", "CHATGPT_STATS_ALLOWED_ORIGINS", "CHATGPT_STATS_REFERENCE_DATE",
	"CHATGPT_STATS_TOP_DAYS", "CHATGPT_STATS_TOP_GAPS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Conversations != "conversations.json" {
		t.Errorf("expected default conversations path, got %s", cfg.Conversations)
	}
	if cfg.OutputDir != "chat_analytics" {
		t.Errorf("expected default output dir, got %s", cfg.OutputDir)
	}
	if cfg.Listen != "127.0.0.1:8203" {
		t.Errorf("expected default listen address, got %s", cfg.Listen)
	}
	if cfg.CacheTTL.Duration != time.Hour {
		t.Errorf("expected default ttl 1h, got %s", cfg.CacheTTL)
	}
	if cfg.TopDaysPerYear != 10 || cfg.TopGapsPerYear != 25 {
		t.Errorf("expected top-N 10/25, got %d/%d", cfg.TopDaysPerYear, cfg.TopGapsPerYear)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATGPT_STATS_CONVERSATIONS", "/data/export.zip")
	t.Setenv("CHATGPT_STATS_TZ", "Europe/Berlin")
	t.Setenv("CHATGPT_STATS_LISTEN", ":9000")
	t.Setenv("CHATGPT_STATS_CACHE_TTL", "5m")
	t.Setenv("CHATGPT_STATS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("CHATGPT_STATS_REFERENCE_DATE", "2024-02-15")
	t.Setenv("CHATGPT_STATS_TOP_DAYS", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Conversations != "/data/export.zip" {
		t.Errorf("expected conversations override, got %s", cfg.Conversations)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("expected listen :9000, got %s", cfg.Listen)
	}
	if cfg.CacheTTL.Duration != 5*time.Minute {
		t.Errorf("expected ttl 5m, got %s", cfg.CacheTTL)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("expected origins %v, got %v", want, cfg.AllowedOrigins)
	}
	if cfg.TopDaysPerYear != 3 {
		t.Errorf("expected top days 3, got %d", cfg.TopDaysPerYear)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
	ref, err := cfg.Reference()
	if err != nil || ref.Format("2006-01-02") != "2024-02-15" {
		t.Errorf("Reference() = %v, %v", ref, err)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATGPT_STATS_CACHE_TTL", "soon")
	t.Setenv("CHATGPT_STATS_TOP_GAPS", "many")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheTTL.Duration != time.Hour || cfg.TopGapsPerYear != 25 {
		t.Errorf("expected fallbacks, got %s and %d", cfg.CacheTTL, cfg.TopGapsPerYear)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "conversations: export.json\ncache_ttl: 30m\ntop_gaps_per_year: 5\nallowed_origins:\n  - http://x.test\ndedupe: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Conversations != "export.json" || cfg.CacheTTL.Duration != 30*time.Minute || cfg.TopGapsPerYear != 5 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !cfg.Dedupe || len(cfg.AllowedOrigins) != 1 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("unset keys should keep defaults, got listen %s", cfg.Listen)
	}

	t.Setenv("CHATGPT_STATS_CONVERSATIONS", "env.json")
	cfg, _ = Load(path)
	if cfg.Conversations != "env.json" {
		t.Errorf("env should override file, got %s", cfg.Conversations)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cache_ttl: forever\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"zero ttl", func(c *Config) { c.CacheTTL = Duration{} }},
		{"zero top days", func(c *Config) { c.TopDaysPerYear = 0 }},
		{"bad reference date", func(c *Config) { c.ReferenceDate = "15/02/2024" }},
		{"empty listen", func(c *Config) { c.Listen = " " }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero burst", func(c *Config) { c.RefreshBurst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestDuration_Set(t *testing.T) {
	var d Duration
	if err := d.Set("90s"); err != nil || d.Duration != 90*time.Second {
		t.Errorf("Set(90s) = %v, %v", d.Duration, err)
	}
	if err := d.Set("soon"); err == nil {
		t.Error("Set(soon) should fail")
	}
}
