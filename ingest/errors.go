package ingest

import (
	"errors"
	"fmt"

	"github.com/georocket/georocket-go/xmlstream"
)

// ParseError reports that the inbound body was not well-formed XML. It
// is terminal for the ingest and maps to HTTP 400.
type ParseError struct {
	Offset int64
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ingest: parse error at offset %d: %s", e.Offset, e.Cause.Error())
}

func (e *ParseError) Unwrap() error { return e.Cause }

// IoError wraps a failure reading the inbound body. It maps to HTTP 500.
type IoError struct {
	Cause error
}

func (e *IoError) Error() string { return "ingest: io error: " + e.Cause.Error() }
func (e *IoError) Unwrap() error { return e.Cause }

// InvalidArgument reports a client-supplied argument the driver rejected
// before ever touching the parser (e.g. an empty body). It maps to HTTP
// 400.
type InvalidArgument struct {
	Cause error
}

func (e *InvalidArgument) Error() string { return "ingest: invalid argument: " + e.Cause.Error() }
func (e *InvalidArgument) Unwrap() error { return e.Cause }

// ErrCancelled is returned when the ingest's context is cancelled
// (client disconnect, timeout) before it completes. It is never reported
// as an HTTP response — the connection is already gone.
var ErrCancelled = errors.New("ingest: cancelled")

// fromParseError converts a tokenizer-level parse failure into the
// ingest package's own ParseError, preserving offset and cause.
func fromParseError(err error) error {
	var pe *xmlstream.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Offset: pe.Offset, Cause: pe.Cause}
	}
	return &ParseError{Cause: err}
}
