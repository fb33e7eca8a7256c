package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
	"github.com/jnspo1/chatgpt-stats/internal/export"
)

const reportGapRows = 20

var (
	reportOut    string
	reportNoSave bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the usage summary and save analytics files",
	Long: `Process the export, save per-conversation and daily statistics as JSON and CSV,
and print a summary of totals, busiest days and inactivity gaps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := analyticsOptions()
		if err != nil {
			return err
		}

		outDir := cfg.OutputDir
		if cmd.Flags().Changed("out") {
			outDir = reportOut
		}

		var (
			corpus  *internal.Corpus
			gapData analytics.GapAnalysis
		)
		steps := []internal.ProgressStep{
			{
				Message: "Processing conversations",
				Fn: func() error {
					var err error
					corpus, err = analytics.LoadCorpus(cfg.Conversations, opts)
					if err != nil {
						return sourceGuidance(cfg.Conversations, err)
					}
					gapData = analytics.ComputeGapAnalysis(corpus.Timestamps)
					return nil
				},
			},
		}
		if !reportNoSave {
			steps = append(steps, internal.ProgressStep{
				Message: "Saving analytics files to " + outDir,
				Fn: func() error {
					_, err := export.SaveAnalyticsFiles(outDir, corpus.Summaries, corpus.Daily, gapData.Gaps)
					return err
				},
			})
		}
		if err := internal.ShowProgressWithSteps(cmd.Context(), steps); err != nil {
			return err
		}

		stats := analytics.ComputeSummary(corpus.Summaries, corpus.Daily, opts.TopDaysPerYear)
		renderReport(cmd.OutOrStdout(), stats, gapData)
		if !reportNoSave {
			renderSavedFooter(cmd.OutOrStdout(), outDir)
		}
		return nil
	},
}

func renderReport(w io.Writer, stats analytics.Summary, gapData analytics.GapAnalysis) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, headerStyle.Render("ChatGPT Usage Summary"), rule)
	printField(w, "Total Messages", humanize.Comma(int64(stats.TotalMessages)))
	printField(w, "Total Chats", humanize.Comma(int64(stats.TotalChats)))

	if stats.FirstDate != nil && stats.LastDate != nil {
		printField(w, "First Chat", *stats.FirstDate)
		printField(w, "Last Chat", *stats.LastDate)
		printField(w, "Time Span", fmt.Sprintf("%.2f years", stats.YearsSpan))
	}

	if len(stats.TopDaysByChats) > 0 {
		topChat, topMsg := stats.TopDaysByChats[0], stats.TopDaysByMessages[0]
		printField(w, "Max Chats in a Day", fmt.Sprintf("%s on %s", humanize.Comma(int64(topChat.TotalChats)), topChat.Date))
		printField(w, "Max Messages in a Day", fmt.Sprintf("%s on %s", humanize.Comma(int64(topMsg.TotalMessages)), topMsg.Date))

		chats := newTable("Date", "Chats")
		for _, r := range stats.TopDaysByChats {
			chats.Row(r.Date, humanize.Comma(int64(r.TotalChats)))
		}
		fmt.Fprintf(w, "\n%s\n%s\n", sectionStyle.Render("Top Days by Chats"), chats.Render())

		messages := newTable("Date", "Messages")
		for _, r := range stats.TopDaysByMessages {
			messages.Row(r.Date, humanize.Comma(int64(r.TotalMessages)))
		}
		fmt.Fprintf(w, "\n%s\n%s\n", sectionStyle.Render("Top Days by Messages"), messages.Render())
	}

	if gapData.TotalDays > 0 {
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, headerStyle.Render("Inactivity Analysis"), rule)
		printField(w, "Total Days in Range", humanize.Comma(int64(gapData.TotalDays)))
		printField(w, "Days with Messages", humanize.Comma(int64(gapData.DaysActive)))
		printField(w, "Days without Messages", humanize.Comma(int64(gapData.DaysInactive)))
		printField(w, "Proportion Inactive", fmt.Sprintf("%.2f%%", gapData.ProportionInactive))

		if longest := gapData.LongestGap; longest != nil {
			fmt.Fprintln(w)
			printField(w, "Longest Gap", fmt.Sprintf("%.2f days", longest.LengthDays))
			fmt.Fprintf(w, "  From: %s\n", dateStyle.Render(longest.StartTimestamp))
			fmt.Fprintf(w, "  To:   %s\n", dateStyle.Render(longest.EndTimestamp))
		}

		if len(gapData.Gaps) > 0 {
			gaps := gapData.Gaps
			if len(gaps) > reportGapRows {
				gaps = gaps[:reportGapRows]
			}
			t := newTable("Rank", "Days", "Start Time", "End Time")
			for i, g := range gaps {
				t.Row(strconv.Itoa(i+1), fmt.Sprintf("%.2f", g.LengthDays), g.StartTimestamp, g.EndTimestamp)
			}
			fmt.Fprintf(w, "\n%s\n%s\n", sectionStyle.Render(fmt.Sprintf("Top %d Longest Gaps (No Messages)", reportGapRows)), t.Render())
		}
	}
	fmt.Fprintln(w, rule)
}

func renderSavedFooter(w io.Writer, dir string) {
	fmt.Fprintf(w, "\nAnalytics data has been saved to the '%s' directory:\n", dir)
	fmt.Fprintln(w, "1. chat_summaries.json/csv - Per-conversation statistics")
	fmt.Fprintln(w, "2. daily_stats.json/csv - Daily usage aggregates")
	fmt.Fprintln(w, "3. message_gaps.json/csv - Message gaps sorted by length")
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), countStyle.Render(value))
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "chat_analytics", "Directory for the analytics files")
	reportCmd.Flags().BoolVar(&reportNoSave, "no-save", false, "Print the report without writing files")
}
