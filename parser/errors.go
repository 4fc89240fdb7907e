package parser

import (
	"fmt"
	"strings"
)

// UnsupportedTypeError reports a file extension no parser is registered for.
type UnsupportedTypeError struct {
	Path string
	Ext  string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: %s", e.Ext, e.Path)
}

// UserMessage returns the operator-facing explanation.
func (e *UnsupportedTypeError) UserMessage() string {
	return fmt.Sprintf("file type %q is not supported (supported: %s); check the file suffix",
		e.Ext, strings.Join(Extensions(), ", "))
}

// ReadError reports a source file that exists in name only: missing,
// unreadable, or corrupt.
type ReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %s", e.Path, e.Reason)
}

func (e *ReadError) Unwrap() error { return e.Err }

// UserMessage returns the operator-facing explanation.
func (e *ReadError) UserMessage() string {
	return fmt.Sprintf("cannot read %s (%s); check that the file exists, is readable and is not corrupt",
		e.Path, e.Reason)
}
