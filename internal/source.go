package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ConversationsEntry is the file name of the conversation list inside a ChatGPT export archive
const ConversationsEntry = "conversations.json"

// LoadConversations reads an export from disk. Plain JSON, .gz, .zst and
// .zip archives are accepted.
func LoadConversations(filePath string) ([]RawConversation, error) {
	data, err := readSource(filePath)
	if err != nil {
		return nil, err
	}
	convs, err := ParseConversations(data)
	if err != nil {
		var serr *SourceError
		if errors.As(err, &serr) {
			serr.Path = filePath
		}
		return nil, err
	}
	LogDebug("Loaded %d conversations from %s", len(convs), filePath)
	return convs, nil
}

func readSource(filePath string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".zip") {
		return readZipSource(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, openError(filePath, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, &SourceError{Path: filePath, Op: "read", Err: fmt.Errorf("%w: %w", ErrSourceMalformed, err)}
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, &SourceError{Path: filePath, Op: "read", Err: fmt.Errorf("%w: %w", ErrSourceMalformed, err)}
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &SourceError{Path: filePath, Op: "read", Err: err}
	}
	return data, nil
}

func readZipSource(filePath string) ([]byte, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, openError(filePath, err)
		}
		return nil, &SourceError{Path: filePath, Op: "open", Err: fmt.Errorf("%w: %w", ErrSourceMalformed, err)}
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if path.Base(f.Name) != ConversationsEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &SourceError{Path: filePath, Op: "read", Err: err}
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, &SourceError{Path: filePath, Op: "read", Err: err}
		}
		return data, nil
	}
	return nil, &SourceError{
		Path: filePath,
		Op:   "open",
		Err:  fmt.Errorf("%w: archive has no %s", ErrSourceMalformed, ConversationsEntry),
	}
}

func openError(filePath string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &SourceError{Path: filePath, Op: "open", Err: fmt.Errorf("%w: %w", ErrSourceMissing, err)}
	}
	return &SourceError{Path: filePath, Op: "open", Err: err}
}

// ParseConversations decodes the export document. The top level must be an
// array; elements that are not objects are kept with no mapping so that the
// conversation count reflects the whole file.
func ParseConversations(data []byte) ([]RawConversation, error) {
	if !isJSONArray(data) {
		if err := json.Unmarshal(data, new(json.RawMessage)); err != nil {
			return nil, syntaxError(data, err)
		}
		return nil, &SourceError{Op: "decode", Err: fmt.Errorf("%w: expected a JSON array of conversations", ErrSourceMalformed)}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, syntaxError(data, err)
	}

	convs := make([]RawConversation, 0, len(items))
	for i, item := range items {
		convs = append(convs, parseConversation(i, item))
	}
	return convs, nil
}

func parseConversation(index int, raw json.RawMessage) RawConversation {
	conv := RawConversation{Index: index, ID: fmt.Sprintf("conversation-%d", index+1)}
	fields, ok := objectFields(raw)
	if !ok {
		LogDebug("conversation %d is not an object, skipping", index)
		return conv
	}

	if id, ok := stringValue(fields["id"]); ok && id != "" {
		conv.ID = id
	} else if id, ok := stringValue(fields["conversation_id"]); ok && id != "" {
		conv.ID = id
	}
	conv.Title, _ = stringValue(fields["title"])
	conv.CreateTime = fields["create_time"]

	if !isJSONObject(fields["mapping"]) {
		return conv
	}
	entries, err := orderedFields(fields["mapping"])
	if err != nil {
		LogDebug("conversation %s: unreadable mapping: %v", conv.ID, err)
		return conv
	}
	conv.Mapping = make([]MappingNode, 0, len(entries))
	for _, e := range entries {
		conv.Mapping = append(conv.Mapping, MappingNode{ID: e.Key, Raw: e.Value})
	}
	return conv
}

func syntaxError(data []byte, err error) error {
	line := 0
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		off := int(syn.Offset)
		if off > len(data) {
			off = len(data)
		}
		line = bytes.Count(data[:off], []byte("\n")) + 1
	}
	return &SourceError{Op: "decode", Line: line, Err: fmt.Errorf("%w: %w", ErrSourceMalformed, err)}
}
