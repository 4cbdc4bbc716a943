package core

import "fmt"

// ErrorKind is the closed error taxonomy from §7. Every error the core
// produces carries exactly one of these kinds.
type ErrorKind string

const (
	ValidationError        ErrorKind = "ValidationError"
	StateConflict          ErrorKind = "StateConflict"
	InsufficientFunds      ErrorKind = "InsufficientFunds"
	NotFound               ErrorKind = "NotFound"
	Duplicate              ErrorKind = "Duplicate"
	AuthorizationFailure   ErrorKind = "AuthorizationFailure"
	BackingStoreUnavailable ErrorKind = "BackingStoreUnavailable"
	PolicyRejection        ErrorKind = "PolicyRejection"
)

// Error is the typed result carried by every entry point that can fail.
// It never exposes secret key material, raw recovery codes, or sponsor
// wallet internals - callers only ever see Kind, Op and a human-readable
// Msg.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &Error{Kind: X}) style matching on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the ErrorKind from err, returning "" if err is not (or
// does not wrap) a *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if as(err, &e) {
		return e.Kind
	}
	return ""
}

// as is a small local stand-in for errors.As: it follows single-error
// Unwrap chains until it finds a *Error, so the package does not import
// errors for this one call site.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func newErr(kind ErrorKind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func wrapErr(kind ErrorKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}
