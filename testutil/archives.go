package testutil

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// WriteGzipFile writes data gzip-compressed to name inside dir
func WriteGzipFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("Failed to gzip fixture: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to gzip fixture: %v", err)
	}
	return WriteFile(t, dir, name, buf.Bytes())
}

// WriteZstdFile writes data zstd-compressed to name inside dir
func WriteZstdFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("Failed to create zstd encoder: %v", err)
	}
	defer enc.Close()
	return WriteFile(t, dir, name, enc.EncodeAll(data, nil))
}

// WriteZipFile writes a zip archive holding each entry name with its content
func WriteZipFile(t *testing.T, dir, name string, entries map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("Failed to add zip entry %s: %v", entry, err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", entry, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return WriteFile(t, dir, name, buf.Bytes())
}
