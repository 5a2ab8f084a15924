// Package memory provides an in-process attribute store for tests and
// ephemeral deployments. All data is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/crossrealm/xrealmd/pkg/authz"
)

// Store is a map-backed attribute store. It implements both
// authz.AttributeStore and authz.AttributeAdmin and is safe for
// concurrent use.
type Store struct {
	mu         sync.RWMutex
	principals map[string]map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{principals: make(map[string]map[string]string)}
}

// Close releases the store. Provided for interface symmetry with
// persistent backends.
func (s *Store) Close() error { return nil }

// GetEntry implements authz.AttributeStore. The returned entry holds a
// snapshot of the principal's attributes, so a decision in flight never
// observes a concurrent admin mutation halfway through.
func (s *Store) GetEntry(ctx context.Context, principal authz.PrincipalIdentity) (authz.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	attrs, ok := s.principals[principal.String()]
	var snapshot map[string]string
	if ok {
		snapshot = make(map[string]string, len(attrs))
		for k, v := range attrs {
			snapshot[k] = v
		}
	}
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", authz.ErrPrincipalNotFound, principal.String())
	}
	return &entry{attrs: snapshot}, nil
}

// PutPrincipal implements authz.AttributeAdmin.
func (s *Store) PutPrincipal(ctx context.Context, principal authz.PrincipalIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[principal.String()]; !ok {
		s.principals[principal.String()] = make(map[string]string)
	}
	return nil
}

// DeletePrincipal implements authz.AttributeAdmin.
func (s *Store) DeletePrincipal(ctx context.Context, principal authz.PrincipalIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.principals, principal.String())
	return nil
}

// SetString implements authz.AttributeAdmin, creating the entry when
// necessary.
func (s *Store) SetString(ctx context.Context, principal authz.PrincipalIdentity, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs, ok := s.principals[principal.String()]
	if !ok {
		attrs = make(map[string]string)
		s.principals[principal.String()] = attrs
	}
	attrs[key] = value
	return nil
}

// DeleteString implements authz.AttributeAdmin. Removing an absent
// attribute is a no-op; a missing principal is an error.
func (s *Store) DeleteString(ctx context.Context, principal authz.PrincipalIdentity, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs, ok := s.principals[principal.String()]
	if !ok {
		return fmt.Errorf("%w: %s", authz.ErrPrincipalNotFound, principal.String())
	}
	delete(attrs, key)
	return nil
}

// ListStrings implements authz.AttributeAdmin.
func (s *Store) ListStrings(ctx context.Context, principal authz.PrincipalIdentity) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs, ok := s.principals[principal.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", authz.ErrPrincipalNotFound, principal.String())
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out, nil
}

// entry is a decision-scoped snapshot of a principal's attributes.
type entry struct {
	attrs map[string]string
}

func (e *entry) GetString(key string) (string, bool, error) {
	v, ok := e.attrs[key]
	return v, ok, nil
}

func (e *entry) Close() error {
	e.attrs = nil
	return nil
}
