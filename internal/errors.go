package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing means the conversations file does not exist.
	ErrSourceMissing = errors.New("conversations file not found")
	// ErrSourceMalformed means the file exists but is not a usable export.
	ErrSourceMalformed = errors.New("conversations file is malformed")
)

// Rejection reasons for mapping nodes that cannot become messages.
var (
	ErrNotObject       = errors.New("node is not an object")
	ErrNoMessage       = errors.New("node has no message")
	ErrNoAuthor        = errors.New("message has no author")
	ErrUnsupportedRole = errors.New("unsupported author role")
	ErrEmptyContent    = errors.New("message has no content parts")
)

// SourceError represents errors loading the conversations export
type SourceError struct {
	Path string
	Op   string // "open", "read", "decode"
	Line int    // set for JSON syntax errors
	Err  error
}

func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("source error: %s %s (line %d): %v", e.Op, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("source error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// RejectionError explains why a mapping node was excluded
type RejectionError struct {
	NodeID string
	Reason error
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("node %s rejected: %v (%s)", e.NodeID, e.Reason, e.Detail)
	}
	return fmt.Sprintf("node %s rejected: %v", e.NodeID, e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsSourceMissing reports whether err is a missing-export failure.
func IsSourceMissing(err error) bool {
	return errors.Is(err, ErrSourceMissing)
}

// IsSourceMalformed reports whether err is a malformed-export failure.
func IsSourceMalformed(err error) bool {
	return errors.Is(err, ErrSourceMalformed)
}
