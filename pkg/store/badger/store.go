// Package badger provides the BadgerDB-backed principal attribute
// store: the persistent backend for cross-realm authorization
// attributes.
//
// Each principal entry is one record under the "e:" key prefix, with the
// attribute map JSON-encoded as the value. The dataset is tiny (one
// record per cross-realm TGT principal, a handful of attributes each),
// so a single JSON blob per principal keeps reads to one key lookup on
// the decision path.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/crossrealm/xrealmd/pkg/authz"
)

const prefixEntry = "e:"

func entryKey(principal authz.PrincipalIdentity) []byte {
	return []byte(prefixEntry + principal.String())
}

// Store is a BadgerDB-backed attribute store. It implements
// authz.AttributeStore and authz.AttributeAdmin.
type Store struct {
	db *badgerdb.DB
}

// Options configures the store.
type Options struct {
	// Path is the on-disk directory for the database. Ignored when
	// InMemory is set.
	Path string

	// InMemory keeps all data in RAM; useful for tests.
	InMemory bool
}

// Open opens (creating if necessary) the attribute database.
func Open(opts Options) (*Store, error) {
	var badgerOpts badgerdb.Options
	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badgerdb.DefaultOptions(opts.Path)
	}
	// Badger's own logger is chatty at INFO; decisions are logged by the
	// engine instead.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open attribute database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetEntry implements authz.AttributeStore. The returned entry is a
// snapshot decoded inside the read transaction, so it stays consistent
// for the duration of the decision regardless of concurrent writes.
func (s *Store) GetEntry(ctx context.Context, principal authz.PrincipalIdentity) (authz.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var attrs map[string]string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		attrs, err = readAttrs(txn, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &entry{attrs: attrs}, nil
}

// PutPrincipal implements authz.AttributeAdmin.
func (s *Store) PutPrincipal(ctx context.Context, principal authz.PrincipalIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(entryKey(principal))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return fmt.Errorf("failed to read principal entry: %w", err)
		}
		return writeAttrs(txn, principal, map[string]string{})
	})
}

// DeletePrincipal implements authz.AttributeAdmin.
func (s *Store) DeletePrincipal(ctx context.Context, principal authz.PrincipalIdentity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(entryKey(principal))
	})
}

// SetString implements authz.AttributeAdmin, creating the entry when
// necessary.
func (s *Store) SetString(ctx context.Context, principal authz.PrincipalIdentity, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		attrs, err := readAttrs(txn, principal)
		if errors.Is(err, authz.ErrPrincipalNotFound) {
			attrs = make(map[string]string)
		} else if err != nil {
			return err
		}
		attrs[key] = value
		return writeAttrs(txn, principal, attrs)
	})
}

// DeleteString implements authz.AttributeAdmin. Removing an absent
// attribute is a no-op; a missing principal is an error.
func (s *Store) DeleteString(ctx context.Context, principal authz.PrincipalIdentity, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		attrs, err := readAttrs(txn, principal)
		if err != nil {
			return err
		}
		if _, ok := attrs[key]; !ok {
			return nil
		}
		delete(attrs, key)
		return writeAttrs(txn, principal, attrs)
	})
}

// ListStrings implements authz.AttributeAdmin.
func (s *Store) ListStrings(ctx context.Context, principal authz.PrincipalIdentity) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var attrs map[string]string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		attrs, err = readAttrs(txn, principal)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// readAttrs loads and decodes a principal's attribute map within txn.
func readAttrs(txn *badgerdb.Txn, principal authz.PrincipalIdentity) (map[string]string, error) {
	item, err := txn.Get(entryKey(principal))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", authz.ErrPrincipalNotFound, principal.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read principal entry: %w", err)
	}

	var attrs map[string]string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &attrs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode principal entry %s: %w", principal.String(), err)
	}
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return attrs, nil
}

// writeAttrs encodes and stores a principal's attribute map within txn.
func writeAttrs(txn *badgerdb.Txn, principal authz.PrincipalIdentity, attrs map[string]string) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode principal entry %s: %w", principal.String(), err)
	}
	if err := txn.Set(entryKey(principal), data); err != nil {
		return fmt.Errorf("failed to store principal entry: %w", err)
	}
	return nil
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
