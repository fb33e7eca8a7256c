package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
	"github.com/jnspo1/chatgpt-stats/internal/export"
)

var (
	tablesOut    string
	tablesFormat string
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Write chat summaries, daily stats and gaps as flat tables",
	Long: `Write the chat_summaries, daily_stats and message_gaps tables with every column.

Formats:
  csv     one .csv file per table
  json    one .json file per table
  yaml    one .yaml file per table
  sqlite  a single chatgpt_stats.db with one SQL table per table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := analyticsOptions()
		if err != nil {
			return err
		}
		corpus, err := analytics.LoadCorpus(cfg.Conversations, opts)
		if err != nil {
			return sourceGuidance(cfg.Conversations, err)
		}

		outDir := cfg.OutputDir
		if cmd.Flags().Changed("out") {
			outDir = tablesOut
		}
		gaps := analytics.ComputeGapAnalysis(corpus.Timestamps).Gaps
		written, err := export.WriteTables(outDir, tablesFormat, export.BuildTables(corpus.Summaries, corpus.Daily, gaps))
		if err != nil {
			return fmt.Errorf("failed to write tables: %w", err)
		}

		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("✓"), path)
		}
		internal.LogInfo("wrote %d table file(s) to %s", len(written), outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().StringVarP(&tablesOut, "out", "o", "chat_analytics", "Output directory")
	tablesCmd.Flags().StringVarP(&tablesFormat, "format", "f", "csv", "Table format (csv, json, yaml, sqlite)")
}
