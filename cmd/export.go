package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/export"
)

// bundleBaseName is the file written by --bundle
const bundleBaseName = "recent_conversations"

var (
	format         string
	outputDir      string
	conversationID string
	exportLimit    int
	bundle         bool
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversation transcripts to files",
	Long: `Export conversations to text, Markdown, JSON, JSONL or YAML, newest first.

Each conversation gets its own file unless --bundle is given, which writes all
of them into a single recent_conversations file.
Use 'chatgpt-stats list' to see available conversation IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		transcripts, err := loadTranscripts()
		if err != nil {
			return err
		}

		if conversationID != "" {
			var match []*internal.Transcript
			for _, t := range transcripts {
				if t.ID == conversationID {
					match = append(match, t)
					break
				}
			}
			if len(match) == 0 {
				return fmt.Errorf("conversation not found: %s (use 'chatgpt-stats list' to see available conversations)", conversationID)
			}
			transcripts = match
		}
		if exportLimit > 0 && exportLimit < len(transcripts) {
			transcripts = transcripts[:exportLimit]
		}
		if len(transcripts) == 0 {
			internal.PrintWarning("No conversations to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		if bundle {
			path := filepath.Join(outputDir, bundleBaseName+"."+exporter.Extension())
			err := internal.ShowProgress(cmd.Context(), fmt.Sprintf("Writing %d conversation(s) to %s", len(transcripts), path), func() error {
				return writeBundle(path, exporter, transcripts)
			})
			if err != nil {
				return err
			}
			internal.PrintSuccess(fmt.Sprintf("Export complete! File saved to %s", path))
			return nil
		}

		exported := 0
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d conversation(s) to %s", len(transcripts), outputDir), func() error {
			for _, t := range transcripts {
				path := filepath.Join(outputDir, fmt.Sprintf("conversation_%s.%s", safeFileName(t.ID), exporter.Extension()))
				if err := writeTranscript(path, exporter, t); err != nil {
					internal.LogError("Failed to export conversation %s: %v", t.ID, err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d conversation(s) exported to %s", exported, outputDir))
		return nil
	},
}

func writeTranscript(path string, exporter export.Exporter, t *internal.Transcript) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(t, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeBundle uses the exporter's bundle layout when it has one and
// otherwise separates the per-conversation output with a rule
func writeBundle(path string, exporter export.Exporter, transcripts []*internal.Transcript) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	write := func(w io.Writer) error {
		if b, ok := exporter.(export.BundleExporter); ok {
			return b.ExportBundle(transcripts, w)
		}
		for i, t := range transcripts {
			if i > 0 {
				if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
					return err
				}
			}
			if err := exporter.Export(t, w); err != nil {
				return err
			}
		}
		return nil
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return file.Close()
}

func safeFileName(id string) string {
	if name := unsafeFileChars.ReplaceAllString(id, "_"); name != "" {
		return name
	}
	return "untitled"
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "text", "Export format (text, md, json, jsonl, yaml)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "chat_exports", "Output directory")
	exportCmd.Flags().StringVar(&conversationID, "id", "", "Export a specific conversation by ID")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "Export at most this many conversations, newest first (0 = all)")
	exportCmd.Flags().BoolVar(&bundle, "bundle", false, "Write all conversations into one file")
}
