package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal/export"
)

var inspectSampleRows int

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect a SQLite file written by 'tables --format sqlite'",
	Long: `Inspect the schema and contents of a chatgpt_stats.db file.

This command shows:
  • Tables and their columns with SQL types
  • Row counts
  • Sample rows from each table

Examples:
  chatgpt-stats inspect                              # Inspect <output dir>/chatgpt_stats.db
  chatgpt-stats inspect stats.db --sample 5          # Inspect a specific file with 5 sample rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := filepath.Join(cfg.OutputDir, export.SQLiteFileName)
		if len(args) > 0 {
			dbPath = args[0]
		}

		infos, err := export.InspectSQLite(dbPath, inspectSampleRows)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w (run 'chatgpt-stats tables --format sqlite' first)", dbPath, err)
		}

		w := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(w, warningStyle.Render("⚠️  No tables found in database"))
			return nil
		}
		fmt.Fprintf(w, "📋 Database: %s\n", dbPath)
		fmt.Fprintf(w, "📊 Found %d table(s)\n\n", len(infos))

		for _, info := range infos {
			fmt.Fprintln(w, strings.Repeat("━", 40))
			fmt.Fprintf(w, "📦 Table: %s\n", titleStyle.Render(info.Name))
			fmt.Fprintln(w, strings.Repeat("━", 40))
			fmt.Fprintf(w, "📊 Rows: %s\n\n", countStyle.Render(humanize.Comma(int64(info.Rows))))

			schema := newTable("Column", "Type")
			for i, c := range info.Columns {
				schema.Row(c.Name, info.Types[i])
			}
			fmt.Fprintln(w, schema.Render())

			if len(info.Sample) > 0 {
				headers := make([]string, len(info.Columns))
				for i, c := range info.Columns {
					headers[i] = c.Name
				}
				sample := newTable(headers...)
				for _, row := range info.Sample {
					sample.Row(truncateCells(row, 40)...)
				}
				fmt.Fprintf(w, "\n%s\n%s\n", sectionStyle.Render(fmt.Sprintf("Sample rows (%d)", len(info.Sample))), sample.Render())
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func truncateCells(row []string, width int) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if runes := []rune(cell); len(runes) > width {
			cell = string(runes[:width-3]) + "..."
		}
		out[i] = cell
	}
	return out
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
