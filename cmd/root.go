package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
	"github.com/jnspo1/chatgpt-stats/internal/config"
)

var (
	verbose           bool
	configPath        string
	conversationsPath string
	timezone          string
	dedupe            bool
	version           string = "dev"
	commit            string = "unknown"
	date              string = "unknown"

	// cfg is resolved before every command runs
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatgpt-stats",
	Short: "Analyze and export your ChatGPT conversation history",
	Long: `Turn a ChatGPT data export into usage statistics, dashboards and readable transcripts.

Download your data from OpenAI (Settings > Data Controls > Export) and point
chatgpt-stats at the conversations.json inside it, or at the export .zip itself.

Features:
  • Usage summary with top days and inactivity gaps
  • Dashboard payload with daily, weekly, monthly and hourly series
  • Live dashboard server with cached snapshots
  • Flat tables as CSV, JSON, YAML or SQLite
  • Transcript export (text, Markdown, JSON, JSONL, YAML)

Quick Start:
  chatgpt-stats report                   # Print the usage summary
  chatgpt-stats serve                    # Serve the dashboard
  chatgpt-stats list                     # List conversations
  chatgpt-stats export --format md       # Export transcripts as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&conversationsPath, "file", "i", config.DefaultConversations, "Conversations export (.json, .json.gz, .json.zst or .zip)")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "IANA time zone for dates and hours (default: local)")
	rootCmd.PersistentFlags().BoolVar(&dedupe, "dedupe", false, "Drop duplicate conversations before processing")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig layers defaults, the config file, the environment and flags
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		loaded.Conversations = conversationsPath
	}
	if flags.Changed("tz") {
		loaded.Timezone = timezone
	}
	if dedupe {
		loaded.Dedupe = true
	}

	level, err := internal.ParseLogLevel(loaded.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	internal.SetLogLevel(level)
	if verbose {
		internal.SetVerbose(true)
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// analyticsOptions translates the resolved config into payload options
func analyticsOptions() (analytics.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return analytics.Options{}, err
	}
	ref, err := cfg.Reference()
	if err != nil {
		return analytics.Options{}, err
	}
	return analytics.Options{
		TopDaysPerYear: cfg.TopDaysPerYear,
		TopGapsPerYear: cfg.TopGapsPerYear,
		ReferenceDate:  ref,
		Location:       loc,
		Dedupe:         cfg.Dedupe,
	}, nil
}

// loadConversations reads the configured export, applying --dedupe
func loadConversations() ([]internal.RawConversation, error) {
	convs, err := internal.LoadConversations(cfg.Conversations)
	if err != nil {
		return nil, sourceGuidance(cfg.Conversations, err)
	}
	if cfg.Dedupe {
		convs = internal.NewDeduplicator().Deduplicate(convs)
	}
	return convs, nil
}

// sourceGuidance turns export loading failures into advice for the user
func sourceGuidance(path string, err error) error {
	switch {
	case internal.IsSourceMissing(err):
		return fmt.Errorf("'%s' not found.\n"+
			"Download your data from OpenAI (Settings > Data Controls > Export)\n"+
			"and place conversations.json in the current directory", path)
	case internal.IsSourceMalformed(err):
		var serr *internal.SourceError
		var syn *json.SyntaxError
		if errors.As(err, &serr) && serr.Line > 0 && errors.As(err, &syn) {
			return fmt.Errorf("'%s' is not valid JSON (line %d): %s\n"+
				"The file may be corrupted. Try re-downloading from OpenAI", path, serr.Line, syn.Error())
		}
		return fmt.Errorf("'%s' is not a usable export: %w\n"+
			"The file may be corrupted. Try re-downloading from OpenAI", path, err)
	default:
		return err
	}
}
