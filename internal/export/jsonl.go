package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	Conversation string   `json:"conversation"`
	Role         string   `json:"role"`
	Content      string   `json:"content"`
	Timestamp    *float64 `json:"timestamp,omitempty"`
	Time         string   `json:"time"`
}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		line := jsonlLine{
			Conversation: transcript.ID,
			Role:         msg.Role,
			Content:      msg.Content,
			Timestamp:    msg.Timestamp,
			Time:         msg.Time,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// ExportBundle concatenates the message lines of every transcript
func (e *JSONLExporter) ExportBundle(transcripts []*internal.Transcript, w io.Writer) error {
	for _, t := range transcripts {
		if err := e.Export(t, w); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
