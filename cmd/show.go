package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
)

var (
	showLimit    int
	showEarliest bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var showCmd = &cobra.Command{
	Use:   "show [conversation-id]",
	Short: "Show the messages of one conversation",
	Long: `Display the transcript of a conversation by ID, or with --earliest the
conversation holding the earliest message in the export.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !showEarliest {
			return errors.New("a conversation ID or --earliest is required")
		}

		convs, err := loadConversations()
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		normalizer := internal.NewNormalizer(loc)

		var (
			conv  *internal.RawConversation
			label string
		)
		if showEarliest {
			found := false
			conv, _, found = internal.FindEarliestConversation(convs)
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversation found to display.")
				return nil
			}
			label = "First Conversation (earliest): "
		} else {
			for i := range convs {
				if convs[i].ID == args[0] {
					conv = &convs[i]
					break
				}
			}
			if conv == nil {
				return fmt.Errorf("conversation not found: %s", args[0])
			}
		}

		transcript, err := normalizer.NormalizeConversation(conv)
		if err != nil {
			return fmt.Errorf("failed to read conversation: %w", err)
		}
		displayTranscript(cmd.OutOrStdout(), label, transcript, showLimit)
		return nil
	},
}

func displayTranscript(w io.Writer, label string, t *internal.Transcript, limit int) {
	fmt.Fprintln(w, sessionHeaderStyle.Render("💬 "+label+t.Title))
	fmt.Fprintln(w, sessionMetaStyle.Render(fmt.Sprintf("ID: %s  •  Created: %s  •  Messages: %d", t.ID, t.Created, t.MessageCount())))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	messages := t.Messages
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	for _, msg := range messages {
		roleStyle := assistantMessageStyle
		if msg.Role == string(internal.RoleUser) {
			roleStyle = userMessageStyle
		}
		fmt.Fprintf(w, "%s %s\n", roleStyle.Render(strings.ToUpper(msg.Role)), timestampStyle.Render("["+msg.Time+"]"))
		fmt.Fprintln(w, messageContentStyle.Render(msg.Content))
	}

	if remaining := t.MessageCount() - len(messages); remaining > 0 {
		fmt.Fprintln(w, dateStyle.Render(fmt.Sprintf("... %d more message(s). Use --limit 0 to see all.", remaining)))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Show at most this many messages (0 = all)")
	showCmd.Flags().BoolVar(&showEarliest, "earliest", false, "Show the conversation with the earliest message")
}
