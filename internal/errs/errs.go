// Package errs defines the closed set of failure kinds reported by cargo-pargo.
// Every failure is fatal for the wrapper; the kind exists so callers and tests
// can tell an unreadable file from a broken manifest or a failed build.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind string

const (
	KindIO         Kind = "io"
	KindParse      Kind = "parse"
	KindSubprocess Kind = "subprocess"
	KindSpawn      Kind = "spawn"
)

// Error is a failure with its kind, the operation that failed and the path or
// command it concerned.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind) + ": " + e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New returns an *Error of the given kind
func New(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IO wraps a filesystem failure
func IO(op, path string, err error) error {
	return New(KindIO, op, path, err)
}

// Parse wraps a malformed manifest or build description
func Parse(op, path string, err error) error {
	return New(KindParse, op, path, err)
}

// Subprocess reports a build tool step that ran but did not succeed
func Subprocess(op string, code int, output string) error {
	if output != "" {
		return New(KindSubprocess, op, "", fmt.Errorf("exit status %d: %s", code, output))
	}
	return New(KindSubprocess, op, "", fmt.Errorf("exit status %d", code))
}

// Spawn reports a process that could not be started
func Spawn(op, path string, err error) error {
	return New(KindSpawn, op, path, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
