package authz

import (
	"context"
	"errors"
)

// ErrPrincipalNotFound is returned (wrapped) by attribute stores when no
// entry exists for the requested principal. The engine surfaces it as a
// lookup error; it is never folded into a policy verdict.
var ErrPrincipalNotFound = errors.New("principal entry not found")

// Entry is a decision-scoped handle to a principal's database record.
// Entries are acquired, consulted, and released within a single Decide
// call; they are never cached across requests.
type Entry interface {
	// GetString returns the value of a string attribute and whether the
	// attribute is set. A missing attribute is (_, false, nil), not an
	// error; an unreadable attribute is reported through err.
	GetString(key string) (value string, ok bool, err error)

	// Close releases the entry. Close must be called on every exit path,
	// including error paths.
	Close() error
}

// AttributeStore fetches principal metadata entries by identity. The
// lookup may block on external I/O; timeouts are the implementation's
// responsibility, typically honored through ctx.
type AttributeStore interface {
	// GetEntry retrieves the database entry for a principal. A missing
	// principal or an I/O failure is returned as an error; callers must
	// not fold it into a policy verdict.
	GetEntry(ctx context.Context, principal PrincipalIdentity) (Entry, error)
}

// AttributeAdmin is the administrative surface of an attribute store:
// the setstr/delstr/getstrs analog used to manage authorization
// attributes on cross-realm TGT principal entries.
type AttributeAdmin interface {
	// PutPrincipal creates the entry for a principal if absent.
	PutPrincipal(ctx context.Context, principal PrincipalIdentity) error

	// DeletePrincipal removes a principal's entry and all attributes.
	DeletePrincipal(ctx context.Context, principal PrincipalIdentity) error

	// SetString sets a string attribute on a principal's entry, creating
	// the entry when necessary.
	SetString(ctx context.Context, principal PrincipalIdentity, key, value string) error

	// DeleteString removes a string attribute. Removing an absent
	// attribute is not an error.
	DeleteString(ctx context.Context, principal PrincipalIdentity, key string) error

	// ListStrings returns all string attributes on a principal's entry.
	ListStrings(ctx context.Context, principal PrincipalIdentity) (map[string]string, error)
}
