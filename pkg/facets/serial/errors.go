package serial

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidClass indicates an incomplete class or field definition.
var ErrInvalidClass = errors.New("serial: invalid class definition")

var errTrailingData = errors.New("unexpected data after document")

// UnknownClassError is returned when a document names a class that is not
// registered.
type UnknownClassError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("serial: unknown class %q", e.Name)
}

// MalformedNodeError is returned when a node has an invalid id/ref
// combination or a payload that does not fit its tag.
type MalformedNodeError struct {
	Tag    Tag
	Reason string
}

// Error implements the error interface.
func (e *MalformedNodeError) Error() string {
	if e.Tag == "" {
		return "serial: malformed node: " + e.Reason
	}
	return fmt.Sprintf("serial: malformed %s node: %s", e.Tag, e.Reason)
}

func malformed(tag Tag, format string, args ...any) *MalformedNodeError {
	return &MalformedNodeError{Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

// MalformedDocumentError is returned when the document text is not valid
// JSON. It is detected before any node is inspected.
type MalformedDocumentError struct {
	Offset int64
	Err    error
}

// Error implements the error interface.
func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("serial: malformed document at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError is returned when encoding meets a value outside the
// supported kinds.
type UnsupportedTypeError struct {
	Type reflect.Type
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("serial: unsupported type %s", e.Type)
}
