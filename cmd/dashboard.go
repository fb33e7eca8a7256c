package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
)

var (
	dashboardOut     string
	dashboardFormat  string
	dashboardRefDate string
	dashboardNoCache bool
	dashboardClear   bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Write the full dashboard payload",
	Long: `Compute every dashboard series (daily, weekly, monthly, hourly, gaps, comparison,
activity by year, content and code statistics) and write them as JSON or YAML.

Results are cached per export file; the cache is skipped when a reference date is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dashboardFormat != "json" && dashboardFormat != "yaml" {
			return fmt.Errorf("unsupported format: %s (supported: json, yaml)", dashboardFormat)
		}

		opts, err := analyticsOptions()
		if err != nil {
			return err
		}
		if dashboardRefDate != "" {
			ref, err := internal.ParseDate(dashboardRefDate)
			if err != nil {
				return fmt.Errorf("invalid --reference-date %q (expected YYYY-MM-DD): %w", dashboardRefDate, err)
			}
			opts.ReferenceDate = ref
		}

		if dashboardClear {
			if err := internal.NewCacheManager(cfg.CacheDir).ClearCache(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			internal.LogInfo("Cleared cached payloads in %s", cfg.CacheDir)
		}

		payload, err := dashboardPayload(cmd, opts, !dashboardNoCache && opts.ReferenceDate.IsZero())
		if err != nil {
			return err
		}

		if dashboardOut == "" {
			return writePayload(cmd.OutOrStdout(), payload, dashboardFormat)
		}
		f, err := os.Create(dashboardOut)
		if err != nil {
			return &internal.ExportError{Format: dashboardFormat, Path: dashboardOut, Err: err}
		}
		if err := writePayload(f, payload, dashboardFormat); err != nil {
			_ = f.Close()
			return &internal.ExportError{Format: dashboardFormat, Path: dashboardOut, Err: err}
		}
		if err := f.Close(); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Dashboard data written to %s", dashboardOut))
		return nil
	},
}

// dashboardPayload builds the payload, going through the disk cache when useCache is set
func dashboardPayload(cmd *cobra.Command, opts analytics.Options, useCache bool) (*analytics.Payload, error) {
	store := internal.NewCacheManager(cfg.CacheDir)
	key := payloadCacheKey(opts)

	if useCache {
		valid, err := store.IsCacheValid(key, cfg.Conversations, cfg.CacheTTL.Duration)
		if err != nil {
			internal.LogWarn("Failed to check cache: %v", err)
		}
		if valid {
			var cached analytics.Payload
			err := store.LoadSnapshot(key, &cached)
			if err == nil {
				internal.LogInfo("Loaded dashboard data from cache")
				return &cached, nil
			}
			internal.LogWarn("Failed to load cache: %v, rebuilding...", err)
		}
	}

	var payload *analytics.Payload
	err := internal.ShowProgress(cmd.Context(), "Building dashboard data...", func() error {
		corpus, err := analytics.LoadCorpus(cfg.Conversations, opts)
		if err != nil {
			return err
		}
		payload = analytics.Build(corpus, opts)
		return nil
	})
	if err != nil {
		return nil, sourceGuidance(cfg.Conversations, err)
	}

	if useCache {
		if err := store.SaveSnapshot(key, cfg.Conversations, payload); err != nil {
			internal.LogWarn("Failed to save cache: %v", err)
		}
	}
	return payload, nil
}

// payloadCacheKey separates cached payloads built with different options
func payloadCacheKey(opts analytics.Options) string {
	loc := "Local"
	if opts.Location != nil {
		loc = opts.Location.String()
	}
	ref := ""
	if !opts.ReferenceDate.IsZero() {
		ref = internal.FormatDate(opts.ReferenceDate)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%t|%d|%d|%s", loc, opts.Dedupe, opts.TopDaysPerYear, opts.TopGapsPerYear, ref)))
	return "payload_" + hex.EncodeToString(sum[:6])
}

func writePayload(w io.Writer, payload *analytics.Payload, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardOut, "out", "o", "", "Output file (default: stdout)")
	dashboardCmd.Flags().StringVarP(&dashboardFormat, "format", "f", "json", "Output format (json, yaml)")
	dashboardCmd.Flags().StringVar(&dashboardRefDate, "reference-date", "", "Anchor the period comparison on this date (YYYY-MM-DD)")
	dashboardCmd.Flags().BoolVar(&dashboardNoCache, "no-cache", false, "Rebuild instead of using the cached payload")
	dashboardCmd.Flags().BoolVar(&dashboardClear, "clear-cache", false, "Remove every cached payload before building")
}
