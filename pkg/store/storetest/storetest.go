// Package storetest provides a conformance test suite for attribute
// store implementations.
//
// All attribute store backends (memory, badger) should pass these tests.
// The suite verifies the AttributeStore/AttributeAdmin behavioral
// contract, catching regressions when store code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) storetest.Store {
//	        return memory.New()
//	    })
//	}
//
// The factory receives *testing.T so it can call t.TempDir() for stores
// that need filesystem paths and t.Cleanup for teardown.
package storetest

import (
	"errors"
	"testing"

	"github.com/crossrealm/xrealmd/pkg/authz"
)

// Store combines the read adapter and the admin surface under test.
type Store interface {
	authz.AttributeStore
	authz.AttributeAdmin
}

// StoreFactory creates a fresh store for one test.
type StoreFactory func(t *testing.T) Store

// RunConformanceSuite runs all attribute store conformance tests.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Run("MissingPrincipal", func(t *testing.T) { testMissingPrincipal(t, factory) })
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, factory) })
	t.Run("EmptyValuePresence", func(t *testing.T) { testEmptyValuePresence(t, factory) })
	t.Run("DeleteString", func(t *testing.T) { testDeleteString(t, factory) })
	t.Run("DeleteAbsentString", func(t *testing.T) { testDeleteAbsentString(t, factory) })
	t.Run("PutPrincipal", func(t *testing.T) { testPutPrincipal(t, factory) })
	t.Run("DeletePrincipal", func(t *testing.T) { testDeletePrincipal(t, factory) })
	t.Run("ListStrings", func(t *testing.T) { testListStrings(t, factory) })
	t.Run("EntrySnapshot", func(t *testing.T) { testEntrySnapshot(t, factory) })
}

func tgtPrincipal() authz.PrincipalIdentity {
	return authz.ParsePrincipal("krbtgt/REALM1.COM@REALM2.COM")
}

func testMissingPrincipal(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()

	_, err := store.GetEntry(ctx, tgtPrincipal())
	if err == nil {
		t.Fatal("GetEntry() on missing principal should fail")
	}
	if !errors.Is(err, authz.ErrPrincipalNotFound) {
		t.Errorf("GetEntry() error = %v, want ErrPrincipalNotFound", err)
	}
}

func testSetAndGet(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.SetString(ctx, tgt, "xr:@REALM2.COM", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}

	entry, err := store.GetEntry(ctx, tgt)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	defer entry.Close()

	_, ok, err := entry.GetString("xr:@REALM2.COM")
	if err != nil {
		t.Fatalf("GetString() failed: %v", err)
	}
	if !ok {
		t.Error("attribute should be present after SetString")
	}

	_, ok, err = entry.GetString("xr:@OTHER.COM")
	if err != nil {
		t.Fatalf("GetString() failed: %v", err)
	}
	if ok {
		t.Error("unset attribute should be absent")
	}
}

// Attribute presence is what matters, not the value: an empty string is
// a valid grant.
func testEmptyValuePresence(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.SetString(ctx, tgt, "xr:alice", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}

	entry, err := store.GetEntry(ctx, tgt)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	defer entry.Close()

	v, ok, err := entry.GetString("xr:alice")
	if err != nil || !ok {
		t.Fatalf("GetString() = (%q, %v, %v), want present", v, ok, err)
	}
	if v != "" {
		t.Errorf("value = %q, want empty string", v)
	}
}

func testDeleteString(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.SetString(ctx, tgt, "xr:alice", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}
	if err := store.DeleteString(ctx, tgt, "xr:alice"); err != nil {
		t.Fatalf("DeleteString() failed: %v", err)
	}

	entry, err := store.GetEntry(ctx, tgt)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	defer entry.Close()

	if _, ok, _ := entry.GetString("xr:alice"); ok {
		t.Error("attribute should be absent after DeleteString")
	}
}

func testDeleteAbsentString(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.PutPrincipal(ctx, tgt); err != nil {
		t.Fatalf("PutPrincipal() failed: %v", err)
	}
	if err := store.DeleteString(ctx, tgt, "xr:never-set"); err != nil {
		t.Errorf("DeleteString() on absent attribute should be a no-op, got: %v", err)
	}

	if err := store.DeleteString(ctx, authz.ParsePrincipal("krbtgt/X@Y"), "xr:a"); err == nil {
		t.Error("DeleteString() on missing principal should fail")
	}
}

func testPutPrincipal(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.PutPrincipal(ctx, tgt); err != nil {
		t.Fatalf("PutPrincipal() failed: %v", err)
	}

	// Entry exists with no attributes.
	entry, err := store.GetEntry(ctx, tgt)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	entry.Close()

	// Re-creating must not wipe existing attributes.
	if err := store.SetString(ctx, tgt, "xr:alice", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}
	if err := store.PutPrincipal(ctx, tgt); err != nil {
		t.Fatalf("PutPrincipal() failed: %v", err)
	}
	attrs, err := store.ListStrings(ctx, tgt)
	if err != nil {
		t.Fatalf("ListStrings() failed: %v", err)
	}
	if _, ok := attrs["xr:alice"]; !ok {
		t.Error("PutPrincipal on existing entry must preserve attributes")
	}
}

func testDeletePrincipal(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.SetString(ctx, tgt, "xr:alice", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}
	if err := store.DeletePrincipal(ctx, tgt); err != nil {
		t.Fatalf("DeletePrincipal() failed: %v", err)
	}
	if _, err := store.GetEntry(ctx, tgt); !errors.Is(err, authz.ErrPrincipalNotFound) {
		t.Errorf("GetEntry() after delete = %v, want ErrPrincipalNotFound", err)
	}
}

func testListStrings(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	want := map[string]string{
		"xr:@REALM2.COM":       "",
		"xr:alice":             "",
		"xr:bob@REALM3.COM":    "",
		"unrelated-annotation": "kept",
	}
	for k, v := range want {
		if err := store.SetString(ctx, tgt, k, v); err != nil {
			t.Fatalf("SetString(%q) failed: %v", k, err)
		}
	}

	got, err := store.ListStrings(ctx, tgt)
	if err != nil {
		t.Fatalf("ListStrings() failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ListStrings() returned %d attributes, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attribute %q = %q, want %q", k, got[k], v)
		}
	}
}

// testEntrySnapshot verifies the decision-scoped entry is isolated from
// admin writes that land after the fetch.
func testEntrySnapshot(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ctx := t.Context()
	tgt := tgtPrincipal()

	if err := store.SetString(ctx, tgt, "xr:alice", ""); err != nil {
		t.Fatalf("SetString() failed: %v", err)
	}

	entry, err := store.GetEntry(ctx, tgt)
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	defer entry.Close()

	if err := store.DeleteString(ctx, tgt, "xr:alice"); err != nil {
		t.Fatalf("DeleteString() failed: %v", err)
	}

	if _, ok, _ := entry.GetString("xr:alice"); !ok {
		t.Error("entry fetched before the delete should still see the attribute")
	}
}
