package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", transcript.Title)
	_, _ = fmt.Fprintf(w, "**ID:** %s  \n", transcript.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", transcript.Created)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range transcript.Messages {
		content := escapeMarkdown(msg.Content)

		_, _ = fmt.Fprintf(w, "**%s:** (%s)\n\n%s\n\n", msg.Role, msg.Time, content)

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes bold and underline markers outside code fences
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
