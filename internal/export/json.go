package export

import (
	"encoding/json"
	"io"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// JSONExporter exports transcripts in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcript)
}

// ExportBundle writes the transcripts as one JSON array
func (e *JSONExporter) ExportBundle(transcripts []*internal.Transcript, w io.Writer) error {
	if transcripts == nil {
		transcripts = []*internal.Transcript{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcripts)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
