package keys

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindInvalidEncoding means input text was not valid base64.
	KindInvalidEncoding Kind = "InvalidEncoding"
	// KindInvalidKey means decoded bytes do not form a valid key, or the
	// parts of a stored key disagree with each other.
	KindInvalidKey Kind = "InvalidKey"
	// KindNoSecretKey means a signature was requested from a public-only key.
	KindNoSecretKey Kind = "NoSecretKey"
	// KindDigest means an unsupported pre-hash algorithm was requested.
	KindDigest Kind = "Digest"
)

// Error is the package's structured error type.
//
// RuleID is a stable identifier (e.g. VAULT-KEY-101) naming the violated
// rule. Message is intended for humans; do not match on it.
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

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
