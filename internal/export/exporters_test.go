package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jnspo1/chatgpt-stats/internal"
	"gopkg.in/yaml.v3"
)

func sampleTranscript() *internal.Transcript {
	ts1, ts2 := 1704103200.0, 1704103260.0
	return &internal.Transcript{
		ID:         "conv-1",
		Title:      "Sorting in Go",
		CreateTime: ts1,
		Created:    "2024-01-01 10:00:00",
		Messages: []internal.TranscriptMessage{
			{Role: "user", Timestamp: &ts1, Time: "2024-01-01 10:00:00", Content: "How do I sort?\nThanks"},
			{Role: "assistant", Timestamp: &ts2, Time: "2024-01-01 10:01:00", Content: "Use **sort.Slice**\n```go\nsort.Ints(x)\n```"},
			{Role: "tool", Time: "Unknown time", Content: "ignored in text"},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"text", "txt", false},
		{"txt", "txt", false},
		{"jsonl", "jsonl", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"yaml", "yaml", false},
		{"json", "json", false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Extension() != tt.wantExt {
				t.Errorf("Extension() = %s, want %s", got.Extension(), tt.wantExt)
			}
		})
	}
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Transcript
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.ID != "conv-1" || len(got.Messages) != 3 {
		t.Errorf("decoded = %+v", got)
	}
	if got.Messages[2].Timestamp != nil {
		t.Error("missing timestamp should stay absent")
	}
}

func TestJSONExporter_ExportBundle(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).ExportBundle(nil, &buf); err != nil {
		t.Fatalf("ExportBundle() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty bundle = %q, want []", buf.String())
	}
}

func TestJSONLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, want := range []string{`"role":"user"`, `"conversation":"conv-1"`, `"timestamp":1704103200`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first line %s should contain %s", lines[0], want)
		}
	}
	if strings.Contains(lines[2], "timestamp") {
		t.Errorf("line without timestamp = %s", lines[2])
	}
}

func TestJSONLExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(&internal.Transcript{ID: "x"}, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty transcript should produce empty output, got %q", buf.String())
	}
}

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got["title"] != "Sorting in Go" {
		t.Errorf("title = %v", got["title"])
	}
}

func TestMarkdownExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# Sorting in Go",
		"**ID:** conv-1",
		"**Messages:** 3",
		"**user:** (2024-01-01 10:00:00)",
		"\\*\\*sort.Slice\\*\\*",
		"sort.Ints(x)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "basic text",
			input: "Hello world",
			want:  []string{"Hello world"},
		},
		{
			name:    "markdown bold",
			input:   "This is **bold** text",
			want:    []string{"\\*\\*bold\\*\\*"},
			notWant: []string{"**bold**"},
		},
		{
			name:    "markdown underline",
			input:   "This is __underlined__ text",
			want:    []string{"\\_\\_underlined\\_\\_"},
			notWant: []string{"__underlined__"},
		},
		{
			name:  "code block preserved",
			input: "```go\nx := a**b\n```",
			want:  []string{"```go", "x := a**b", "```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeMarkdown(tt.input)
			for _, wantStr := range tt.want {
				if !strings.Contains(got, wantStr) {
					t.Errorf("escapeMarkdown() should contain %q, got: %s", wantStr, got)
				}
			}
			for _, notWantStr := range tt.notWant {
				if strings.Contains(got, notWantStr) {
					t.Errorf("escapeMarkdown() should not contain %q, got: %s", notWantStr, got)
				}
			}
		})
	}
}

func TestTextExporter_ExportBundle(t *testing.T) {
	exporter := &TextExporter{Now: func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }}
	var buf bytes.Buffer
	if err := exporter.ExportBundle([]*internal.Transcript{sampleTranscript()}, &buf); err != nil {
		t.Fatalf("ExportBundle() error = %v", err)
	}

	border := "+" + strings.Repeat("=", 98) + "+"
	banner := "| CONVERSATION #1: Sorting in Go" + strings.Repeat(" ", 98-len(" CONVERSATION #1: Sorting in Go")) + "|"
	want := "CHATGPT CONVERSATION EXPORT\n" +
		"Generated on: 2024-05-06 07:08:09\n" +
		"Contains 1 selected conversations\n" +
		strings.Repeat("=", 100) + "\n\n" +
		"\n" + border + "\n" +
		banner + "\n" +
		"| Date: 2024-01-01 10:00:00" + strings.Repeat(" ", 98-len(" Date: 2024-01-01 10:00:00")) + "|\n" +
		border + "\n\n" +
		">>> USER [2024-01-01 10:00:00]:\n" +
		"    How do I sort?\n" +
		"    Thanks\n" +
		"\n" +
		"    CHATGPT [2024-01-01 10:01:00]:\n" +
		"        Use **sort.Slice**\n" +
		"        ```go\n" +
		"        sort.Ints(x)\n" +
		"        ```\n" +
		"\n" +
		"\n" + strings.Repeat("*", 100) + "\n\n"

	if got := buf.String(); got != want {
		t.Errorf("ExportBundle() output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTextExporter_LongTitleNotTruncated(t *testing.T) {
	tr := sampleTranscript()
	tr.Title = strings.Repeat("é", 120)
	var buf bytes.Buffer
	if err := (&TextExporter{}).Export(tr, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "| CONVERSATION #1: "+tr.Title+"|") {
		t.Error("long title should be written whole")
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("äb", 4); got != "äb  " {
		t.Errorf("padRight() = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight() = %q", got)
	}
}
