package trail

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoValue signals that a map or struct source did not contain a value for
// a requested key.
var ErrNoValue = errors.New("no value")

// ErrNotSupported signals that a source value can not be interpreted as the
// requested shape.
var ErrNotSupported = errors.New("not supported")

// NotSupportedError is returned by the [Decoder] for target types it can not
// deserialize into.
type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// UnexpectedTypeError is returned by visitors when the backend delivers a
// shape the consumer can not use, e.g. a string where an int was wanted.
type UnexpectedTypeError struct {
	Want string
	Got  string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("unexpected %s, want %s", e.Got, e.Want)
}

// Error pairs the backend's original error with the [Path] at which it
// occurred. It is produced by [Deserialize] and [Unmarshal]; every other
// layer passes backend errors through untouched.
type Error struct {
	path Path
	err  error
}

// NewError pairs err with the path captured at failure time. Use it together
// with [Track.Snapshot] when driving a [Wrap]ped Deserializer manually.
func NewError(path Path, err error) *Error {
	return &Error{path: path, err: err}
}

// Path returns the path from the document root to the value whose
// deserialization failed. It is empty for failures before any descent, e.g.
// a type mismatch on a root-level scalar.
func (e *Error) Path() Path {
	return e.path
}

// Unwrap returns the backend's original error.
func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Error() string {
	if e.path.Len() == 0 {
		return e.err.Error()
	}

	return e.path.String() + ": " + e.err.Error()
}
