package authz

import "fmt"

// ErrorCode classifies authorization engine failures. A policy denial is
// not an error; these codes cover configuration and infrastructure
// problems that must never collapse into an allow or deny verdict.
type ErrorCode int

const (
	// ErrConfig indicates malformed allowed-realm configuration.
	// "Not configured" is an empty allowlist, not an error.
	ErrConfig ErrorCode = iota + 1

	// ErrLookup indicates the cross-realm TGT principal entry could not
	// be retrieved from the attribute store.
	ErrLookup

	// ErrAttributeRead indicates an individual attribute read failed
	// (unreadable, as opposed to absent).
	ErrAttributeRead
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrConfig:
		return "Config"
	case ErrLookup:
		return "Lookup"
	case ErrAttributeRead:
		return "AttributeRead"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is an authorization failure with enough context (which
// principal, which realm) for the caller to log meaningfully.
type Error struct {
	Code      ErrorCode
	Message   string
	Principal string
	Realm     string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Principal != "" {
		msg += fmt.Sprintf(" (principal: %s)", e.Principal)
	}
	if e.Realm != "" {
		msg += fmt.Sprintf(" (realm: %s)", e.Realm)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	ae, ok := err.(*Error)
	return ok && ae.Code == code
}

// NewConfigError creates a Config error for a malformed option.
func NewConfigError(message string, cause error) *Error {
	return &Error{Code: ErrConfig, Message: message, Err: cause}
}

// NewLookupError creates a Lookup error for an unretrievable TGT entry.
func NewLookupError(principal PrincipalIdentity, cause error) *Error {
	return &Error{
		Code:      ErrLookup,
		Message:   "failed to retrieve cross-realm TGT entry",
		Principal: principal.String(),
		Realm:     principal.Realm,
		Err:       cause,
	}
}

// NewAttributeReadError creates an AttributeRead error for an attribute
// that exists but could not be read.
func NewAttributeReadError(principal PrincipalIdentity, key string, cause error) *Error {
	return &Error{
		Code:      ErrAttributeRead,
		Message:   fmt.Sprintf("failed to read attribute %q", key),
		Principal: principal.String(),
		Realm:     principal.Realm,
		Err:       cause,
	}
}
