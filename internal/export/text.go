package export

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jnspo1/chatgpt-stats/internal"
)

const (
	bannerWidth = 98
	ruleWidth   = 100
)

// TextExporter writes the plain-text conversation layout: a boxed banner per
// conversation followed by indented USER and CHATGPT blocks
type TextExporter struct {
	// Now stamps the bundle header; nil means time.Now
	Now func() time.Time
}

// Export writes one conversation block numbered 1
func (e *TextExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	return writeTextBlock(w, 1, transcript)
}

// ExportBundle writes the export header and every conversation block
func (e *TextExporter) ExportBundle(transcripts []*internal.Transcript, w io.Writer) error {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	var b strings.Builder
	b.WriteString("CHATGPT CONVERSATION EXPORT\n")
	fmt.Fprintf(&b, "Generated on: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Contains %d selected conversations\n", len(transcripts))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for i, t := range transcripts {
		if err := writeTextBlock(w, i+1, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTextBlock(w io.Writer, index int, t *internal.Transcript) error {
	var b strings.Builder
	border := "+" + strings.Repeat("=", bannerWidth) + "+\n"

	b.WriteString("\n")
	b.WriteString(border)
	fmt.Fprintf(&b, "|%s|\n", padRight(fmt.Sprintf(" CONVERSATION #%d: %s", index, t.Title), bannerWidth))
	fmt.Fprintf(&b, "|%s|\n", padRight(" Date: "+t.Created, bannerWidth))
	b.WriteString(border + "\n")

	for _, msg := range t.Messages {
		switch strings.ToUpper(msg.Role) {
		case "USER":
			fmt.Fprintf(&b, ">>> USER [%s]:\n", msg.Time)
			writeIndented(&b, msg.Content, "    ")
		case "ASSISTANT":
			fmt.Fprintf(&b, "    CHATGPT [%s]:\n", msg.Time)
			writeIndented(&b, msg.Content, "        ")
		default:
			continue
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + strings.Repeat("*", ruleWidth) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeIndented(b *strings.Builder, content, indent string) {
	for _, line := range strings.Split(content, "\n") {
		b.WriteString(indent + line + "\n")
	}
}

// padRight pads s with spaces to width characters; longer strings are kept whole
func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Extension returns the file extension for this format
func (e *TextExporter) Extension() string {
	return "txt"
}
