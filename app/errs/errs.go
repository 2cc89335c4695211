// Package errs classifies boundary errors so callers can branch on the
// failure class instead of inspecting error strings or sentinel values.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
	KindStorage Kind = "storage"
	KindConfig  Kind = "configuration"
	KindUnknown Kind = "unknown"
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Kind() Kind {
	return e.kind
}

// New creates a classified error without an underlying cause.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Wrap classifies an underlying error. Returns nil if err is nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf returns the classification of err, or KindUnknown for
// unclassified errors anywhere in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
