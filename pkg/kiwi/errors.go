// Package kiwi holds the error categories shared by every kiwi package.
//
// Errors returned from the object store, the staging index and the commit
// archive are classified into one of a closed set of categories so callers
// can branch on the kind of failure without parsing messages:
//
//	switch kiwi.CategoryOf(err) {
//	case kiwi.ErrRepoNotInitialized:
//		...
//	}
package kiwi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/warpfork/go-errcat"
)

// ErrorCategory identifies the kind of a kiwi failure.
type ErrorCategory string

const (
	ErrRepoAlreadyExists  ErrorCategory = "kiwi-repo-already-exists"
	ErrRepoNotInitialized ErrorCategory = "kiwi-repo-not-initialized"
	ErrStaging            ErrorCategory = "kiwi-staging"         // bad or missing file
	ErrObjectWrite        ErrorCategory = "kiwi-object-write"    // object store I/O failure
	ErrIndexCorrupted     ErrorCategory = "kiwi-index-corrupted" // ledger unreadable or unwritable
	ErrInvalidCommand     ErrorCategory = "kiwi-invalid-command"
)

// Label returns the short human-readable name of the category.
func (c ErrorCategory) Label() string {
	switch c {
	case ErrRepoAlreadyExists:
		return "repository already exists"
	case ErrRepoNotInitialized:
		return "repository not initialized"
	case ErrStaging:
		return "staging failed"
	case ErrObjectWrite:
		return "object write failed"
	case ErrIndexCorrupted:
		return "index corrupted"
	case ErrInvalidCommand:
		return "invalid command"
	}
	return string(c)
}

// Error is a categorized failure carrying the context it happened in.
// It satisfies errcat.Error, so errcat.Category works on it directly.
type Error struct {
	Kind   ErrorCategory
	Op     string // operation, e.g. "stage" or "object put"
	Path   string // file the operation was working on, if any
	Digest string // object digest involved, if any
	Msg    string // extra detail when Err alone does not explain the failure
	Err    error  // underlying cause
}

// E builds an *Error of the given kind. The cause may be nil.
func E(kind ErrorCategory, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPath sets the path and returns e for chaining.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithDigest sets the digest and returns e for chaining.
func (e *Error) WithDigest(digest string) *Error {
	e.Digest = digest
	return e
}

// WithMsg sets the detail message and returns e for chaining.
func (e *Error) WithMsg(format string, args ...any) *Error {
	e.Msg = fmt.Sprintf(format, args...)
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Digest != "" {
		fmt.Fprintf(&b, " (%s)", e.Digest)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		fmt.Fprintf(&b, "%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.Label())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Category implements errcat.Error.
func (e *Error) Category() interface{} { return e.Kind }

// Message implements errcat.Error.
func (e *Error) Message() string { return e.Error() }

// Details implements errcat.Error.
func (e *Error) Details() map[string]string {
	d := make(map[string]string, 3)
	if e.Op != "" {
		d["op"] = e.Op
	}
	if e.Path != "" {
		d["path"] = e.Path
	}
	if e.Digest != "" {
		d["digest"] = e.Digest
	}
	return d
}

// CategoryOf returns the category of err, looking through %w wrapping.
// Errors built with errcat.Errorf and a kiwi category are recognized too.
// Uncategorized errors return the empty category.
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if c, ok := errcat.Category(e).(ErrorCategory); ok {
			return c
		}
	}
	return ""
}

// Is reports whether err belongs to the given category.
func Is(err error, kind ErrorCategory) bool {
	return CategoryOf(err) == kind
}
