package vault

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindDocument covers malformed or structurally invalid vault documents.
	KindDocument Kind = "Document"
	// KindUnknownKey means a key entry carries a tag this version does not know.
	KindUnknownKey Kind = "UnknownKey"
	// KindEncode covers vaults that cannot be serialized (e.g. a nil key).
	KindEncode Kind = "Encode"
)

// Error is the package's structured error type.
//
// Key decoding failures are kept as Cause, so keys.IsKind and keys.RuleID
// still report the underlying key error.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the RuleID of the outermost *Error in err, or "".
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
