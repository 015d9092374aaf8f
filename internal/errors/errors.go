package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can decide how to present it
// without string matching.
type Kind string

const (
	// KindAuth covers a missing refresh token or a rejected/failed refresh
	// call. Always resolves to a full session clear plus logout redirect.
	KindAuth Kind = "auth"

	// KindValidation covers preconditions violated locally before any
	// network call is made.
	KindValidation Kind = "validation"

	// KindNetwork covers transient transport failures.
	KindNetwork Kind = "network"

	// KindBusiness covers well-formed requests the server rejected
	// (stock conflicts, state conflicts). Never retried client-side.
	KindBusiness Kind = "business"

	// KindCancelled covers explicit aborts of in-flight work, kept
	// distinct from KindNetwork so cancellations are not misreported
	// as failures.
	KindCancelled Kind = "cancelled"
)

// Error is the normalized failure shape every transport-level problem is
// reduced to before it reaches callers: a message plus optional per-field
// detail from the server.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // field name -> server-provided message
	Status  int               // HTTP status for server responses, 0 otherwise
	cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two normalized errors on kind alone when the
// target carries no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New builds a normalized error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Auth builds a KindAuth error wrapping cause.
func Auth(message string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: message, cause: cause}
}

// Validation builds a KindValidation error with optional per-field detail.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Network builds a KindNetwork error wrapping the transport cause.
func Network(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, cause: cause}
}

// Business builds a KindBusiness error carrying the server's message,
// status and per-field detail verbatim.
func Business(message string, status int, fields map[string]string) *Error {
	return &Error{Kind: KindBusiness, Message: message, Status: status, Fields: fields}
}

// Cancelled builds a KindCancelled error wrapping the context cause.
func Cancelled(message string, cause error) *Error {
	return &Error{Kind: KindCancelled, Message: message, cause: cause}
}

// KindOf returns the kind of err if it is (or wraps) a normalized Error,
// and "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is (or wraps) a normalized Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FieldsOf returns the per-field detail of err, or nil.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
