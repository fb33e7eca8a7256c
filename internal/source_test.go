package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jnspo1/chatgpt-stats/testutil"
)

func sampleExport() []byte {
	return BuildExportJSON(
		MakeConversationJSON("conv-1", []TimedText{{Time: 1704103200, Text: "hello"}}),
		MakeConversationJSON("conv-2", []TimedText{{Time: 1704535200, Text: "again"}}),
	)
}

func TestLoadConversations_Formats(t *testing.T) {
	data := sampleExport()
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{name: "plain json", path: testutil.WriteConversationsFile(t, dir, data)},
		{name: "gzip", path: testutil.WriteGzipFile(t, dir, "conversations.json.gz", data)},
		{name: "zstd", path: testutil.WriteZstdFile(t, dir, "conversations.json.zst", data)},
		{name: "zip archive", path: testutil.WriteZipFile(t, dir, "export.zip", map[string][]byte{
			"chat.html":          []byte("<html></html>"),
			"conversations.json": data,
		})},
		{name: "zip with nested entry", path: testutil.WriteZipFile(t, dir, "nested.zip", map[string][]byte{
			"export-2024/conversations.json": data,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convs, err := LoadConversations(tt.path)
			if err != nil {
				t.Fatalf("LoadConversations() error = %v", err)
			}
			if len(convs) != 2 || convs[0].ID != "conv-1" || convs[1].ID != "conv-2" {
				t.Errorf("unexpected conversations: %+v", convs)
			}
		})
	}
}

func TestLoadConversations_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		path          string
		wantMissing   bool
		wantMalformed bool
		wantLine      int
	}{
		{
			name:        "missing file",
			path:        filepath.Join(dir, "nope.json"),
			wantMissing: true,
		},
		{
			name:        "missing zip",
			path:        filepath.Join(dir, "nope.zip"),
			wantMissing: true,
		},
		{
			name:          "syntax error",
			path:          testutil.WriteFile(t, dir, "bad.json", []byte("[\n  {\"id\": \"a\"},\n  {\"id\": }\n]")),
			wantMalformed: true,
			wantLine:      3,
		},
		{
			name:          "top level object",
			path:          testutil.WriteFile(t, dir, "object.json", []byte(`{"id": "a"}`)),
			wantMalformed: true,
		},
		{
			name:          "zip without conversations",
			path:          testutil.WriteZipFile(t, dir, "empty.zip", map[string][]byte{"chat.html": []byte("x")}),
			wantMalformed: true,
		},
		{
			name:          "corrupt gzip",
			path:          testutil.WriteFile(t, dir, "broken.json.gz", []byte("not gzip")),
			wantMalformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConversations(tt.path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsSourceMissing(err) != tt.wantMissing {
				t.Errorf("IsSourceMissing() = %v, want %v (%v)", IsSourceMissing(err), tt.wantMissing, err)
			}
			if IsSourceMalformed(err) != tt.wantMalformed {
				t.Errorf("IsSourceMalformed() = %v, want %v (%v)", IsSourceMalformed(err), tt.wantMalformed, err)
			}
			var serr *SourceError
			if !errors.As(err, &serr) {
				t.Fatalf("error is not a *SourceError: %T", err)
			}
			if serr.Path != tt.path {
				t.Errorf("Path = %q, want %q", serr.Path, tt.path)
			}
			if serr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", serr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseConversations(t *testing.T) {
	data := []byte(`[
		{"conversation_id": "alt", "title": "T", "mapping": {"b": {"message": null}, "a": {"message": null}}},
		"not an object",
		{"id": "", "mapping": []},
		{"id": "dup", "mapping": {"x": 1, "x": 2}}
	]`)

	convs, err := ParseConversations(data)
	if err != nil {
		t.Fatalf("ParseConversations() error = %v", err)
	}
	if len(convs) != 4 {
		t.Fatalf("got %d conversations, want 4", len(convs))
	}

	if convs[0].ID != "alt" || convs[0].Title != "T" {
		t.Errorf("conversation 0 = %q %q, want alt T", convs[0].ID, convs[0].Title)
	}
	if ids := []string{convs[0].Mapping[0].ID, convs[0].Mapping[1].ID}; ids[0] != "b" || ids[1] != "a" {
		t.Errorf("mapping order = %v, want document order [b a]", ids)
	}
	if convs[1].HasMapping() || convs[1].ID != "conversation-2" {
		t.Errorf("non-object conversation = %+v", convs[1])
	}
	if convs[2].HasMapping() || convs[2].ID != "conversation-3" {
		t.Errorf("array mapping conversation = %+v", convs[2])
	}
	if len(convs[3].Mapping) != 1 || string(convs[3].Mapping[0].Raw) != "2" {
		t.Errorf("repeated key should keep one entry with the last value, got %+v", convs[3].Mapping)
	}
	for i, c := range convs {
		if c.Index != i {
			t.Errorf("conversation %d Index = %d", i, c.Index)
		}
	}
}

func TestParseConversations_Empty(t *testing.T) {
	convs, err := ParseConversations([]byte(" [] "))
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 0 {
		t.Errorf("got %d conversations, want 0", len(convs))
	}
}

func TestLoadConversations_Unreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	path := testutil.WriteConversationsFile(t, t.TempDir(), sampleExport())
	if err := os.Chmod(path, 0); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConversations(path)
	if err == nil || IsSourceMissing(err) || IsSourceMalformed(err) {
		t.Errorf("expected a plain open error, got %v", err)
	}
}
