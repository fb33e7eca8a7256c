package export

import (
	"fmt"
	"io"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// Exporter defines the interface for all transcript export formats
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// BundleExporter writes several transcripts into one document
type BundleExporter interface {
	ExportBundle(transcripts []*internal.Transcript, w io.Writer) error
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "text", "txt":
		return &TextExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, jsonl, md, yaml, json)", format)
	}
}
