package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
)

var healthcheckDetails bool

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the export, template and cache are usable",
	Long: `Check the setup by verifying:
  • The conversations export can be found and decoded
  • Conversations with timed user messages exist
  • The dashboard template is present
  • The cache directory is writable

This command is useful for debugging a setup before running serve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, sectionStyle.Render("🔍 chatgpt-stats Health Check"))
		fmt.Fprintln(w)

		// Step 1: the export itself
		fmt.Fprintln(w, labelStyle.Render("Step 1: Loading conversations export..."))
		convs, err := internal.LoadConversations(cfg.Conversations)
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render("❌ Failed to load "+cfg.Conversations))
			return sourceGuidance(cfg.Conversations, err)
		}
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Loaded %s conversation(s)", humanize.Comma(int64(len(convs))))))
		if healthcheckDetails {
			if info, err := os.Stat(cfg.Conversations); err == nil {
				fmt.Fprintf(w, "   File: %s (%s)\n", cfg.Conversations, humanize.Bytes(uint64(info.Size())))
			}
		}
		fmt.Fprintln(w)

		// Step 2: conversations that feed the statistics
		fmt.Fprintln(w, labelStyle.Render("Step 2: Processing conversations..."))
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		corpus := internal.NewProcessor(loc).Process(convs)
		usable := len(corpus.Summaries)
		if usable > 0 {
			fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s conversation(s) with timed user messages", humanize.Comma(int64(usable)))))
			if healthcheckDetails {
				fmt.Fprintf(w, "   Active days: %d\n", len(corpus.Daily))
				fmt.Fprintf(w, "   Messages: %s\n", humanize.Comma(int64(len(corpus.Timestamps))))
			}
		} else {
			fmt.Fprintln(w, warningStyle.Render("⚠️  No conversations with timed user messages"))
			fmt.Fprintln(w, "   Statistics will be empty")
		}
		fmt.Fprintln(w)

		// Step 3: dashboard template
		fmt.Fprintln(w, labelStyle.Render("Step 3: Checking dashboard template..."))
		templateOK := checkFile(w, cfg.Template, "Dashboard template")
		fmt.Fprintln(w)

		// Step 4: cache directory
		fmt.Fprintln(w, labelStyle.Render("Step 4: Checking cache directory..."))
		cacheOK := true
		store := internal.NewCacheManager(cfg.CacheDir)
		if err := store.EnsureCacheDir(); err != nil {
			cacheOK = false
			fmt.Fprintln(w, warningStyle.Render("⚠️  Cache directory is not writable:"), err)
		} else {
			fmt.Fprintln(w, successStyle.Render("✅ Cache directory ready"))
			if healthcheckDetails {
				fmt.Fprintf(w, "   Directory: %s\n", store.GetCacheDir())
			}
		}
		fmt.Fprintln(w)

		// Summary
		fmt.Fprintln(w, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(w)
		if templateOK && cacheOK && usable > 0 {
			fmt.Fprintln(w, successStyle.Render("✅ Health check passed!"))
		} else {
			fmt.Fprintln(w, warningStyle.Render("⚠️  Export is readable but some checks need attention"))
		}
		return nil
	},
}

func checkFile(w io.Writer, path, label string) bool {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("⚠️  %s not found", label)))
		if healthcheckDetails {
			fmt.Fprintf(w, "   Expected: %s\n", path)
		}
		return false
	}
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s found", label)))
	if healthcheckDetails {
		fmt.Fprintf(w, "   Path: %s\n", path)
	}
	return true
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}
