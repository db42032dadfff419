// Package ingest implements the vendor-specific adapters that turn one
// coding-agent's on-disk JSONL session trace into a canonical
// model.Session. Each adapter streams its input line by line, tolerates
// malformed lines as warnings, and raises an IngestError only when no turn
// can be recovered at all.
package ingest

import (
	"context"
	"fmt"

	"github.com/agentaudit/agentaudit/internal/logging"
	"github.com/agentaudit/agentaudit/internal/model"
)

var log = logging.ForComponent(logging.CompIngest)

// Adapter parses one vendor's on-disk session trace into a canonical
// Session. Implementations must stream rather than materialize the whole
// file, and must check ctx for cancellation at per-line granularity.
type Adapter interface {
	// Agent identifies which vendor this adapter parses.
	Agent() model.AgentKind

	// Parse reads path and returns a canonical Session. A single malformed
	// line is recorded as a Warning on the returned session, not an error;
	// an error is returned only when the file cannot be read at all, or no
	// turn could be recovered from it.
	Parse(ctx context.Context, path string) (*model.Session, error)
}

// ErrorKind discriminates the structural failure modes an Adapter can
// report. Per-line issues never reach this type; they become Warnings.
type ErrorKind int

const (
	// FileUnreadable means the path could not be opened or read.
	FileUnreadable ErrorKind = iota
	// CorruptJSON means the line scanner failed partway through the file
	// (e.g. a line longer than its buffer); LineNo is the last line read.
	// A single line that is not valid JSON is a Warning, not this error.
	CorruptJSON
	// SchemaMismatch means a line parsed as JSON but did not match the
	// vendor's expected shape closely enough to recover any turn.
	SchemaMismatch
	// EmptySession means the file produced zero turns.
	EmptySession
	// Cancelled means ctx was cancelled mid-parse.
	Cancelled
)

func (k ErrorKind) String() string {
	switch k {
	case FileUnreadable:
		return "file_unreadable"
	case CorruptJSON:
		return "corrupt_json"
	case SchemaMismatch:
		return "schema_mismatch"
	case EmptySession:
		return "empty_session"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IngestError is the structural failure an Adapter.Parse returns. LineNo is
// 0 when the error is not line-addressable (FileUnreadable, EmptySession);
// for Cancelled it is the line at which the cancellation was noticed.
type IngestError struct {
	Kind   ErrorKind
	Path   string
	LineNo int
	Reason string
	Err    error
}

func (e *IngestError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("ingest: %s: %s:%d: %s", e.Kind, e.Path, e.LineNo, e.Reason)
	}
	return fmt.Sprintf("ingest: %s: %s: %s", e.Kind, e.Path, e.Reason)
}

func (e *IngestError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, path string, lineNo int, reason string, cause error) *IngestError {
	return &IngestError{Kind: kind, Path: path, LineNo: lineNo, Reason: reason, Err: cause}
}
