package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, newest first",
	Long:  `List the conversations in the export with their message count and creation time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transcripts, err := loadTranscripts()
		if err != nil {
			return err
		}
		total := len(transcripts)
		if listLimit > 0 && listLimit < total {
			transcripts = transcripts[:listLimit]
		}
		displayTranscripts(cmd.OutOrStdout(), transcripts, total)
		return nil
	},
}

// loadTranscripts reads the export and normalizes it for display
func loadTranscripts() ([]*internal.Transcript, error) {
	convs, err := loadConversations()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return internal.NewNormalizer(loc).NormalizeAllConversations(convs), nil
}

func displayTranscripts(w io.Writer, transcripts []*internal.Transcript, total int) {
	if len(transcripts) == 0 {
		fmt.Fprintln(w, headerStyle.Render("📋 No conversations found"))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Found %s conversation(s)", humanize.Comma(int64(total)))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(tw, strings.Repeat("─", 100))

	now := time.Now()
	for _, t := range transcripts {
		title := t.Title
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:47]) + "..."
		}
		created := dateStyle.Render(t.Created)
		if t.CreateTime > 0 {
			created = dateStyle.Render(t.Created + " (" + humanize.RelTime(time.Unix(int64(t.CreateTime), 0), now, "ago", "from now") + ")")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(t.ID), title, countStyle.Render(humanize.Comma(int64(t.MessageCount()))), created)
	}
	_ = tw.Flush()

	if len(transcripts) < total {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dateStyle.Render(fmt.Sprintf("... and %s more", humanize.Comma(int64(total-len(transcripts))))))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(transcripts[0].ID)+
		idStyle.Render(") with `chatgpt-stats show <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most this many conversations (0 = all)")
}
