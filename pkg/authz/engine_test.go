package authz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeEntry is a scripted principal entry for engine tests.
type fakeEntry struct {
	attrs   map[string]string
	readErr map[string]error
	closed  bool
}

func (e *fakeEntry) GetString(key string) (string, bool, error) {
	if err, ok := e.readErr[key]; ok {
		return "", false, err
	}
	v, ok := e.attrs[key]
	return v, ok, nil
}

func (e *fakeEntry) Close() error {
	e.closed = true
	return nil
}

// fakeStore serves scripted entries and counts lookups so tests can
// verify which decisions touch the store at all.
type fakeStore struct {
	mu       sync.Mutex
	entries  map[string]*fakeEntry
	getErr   error
	getCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*fakeEntry)}
}

func (s *fakeStore) GetEntry(ctx context.Context, principal PrincipalIdentity) (Entry, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	e, ok := s.entries[principal.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrincipalNotFound, principal.String())
	}
	return e, nil
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

// addEntry registers a scripted entry under the TGT principal.
func (s *fakeStore) addEntry(principal string, attrs map[string]string) *fakeEntry {
	if attrs == nil {
		attrs = map[string]string{}
	}
	e := &fakeEntry{attrs: attrs}
	s.entries[principal] = e
	return e
}

// Shared test topology: this KDC serves EAST; WEST is directly trusted;
// FAR reaches EAST transitively through WEST.
const (
	realmEast = "EAST.EXAMPLE.COM"
	realmWest = "WEST.EXAMPLE.COM"
	realmFar  = "FAR.EXAMPLE.COM"

	// The cross-realm TGT principal for requests arriving from WEST.
	crossTGT = "krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM"
)

func directTicket(client string) Ticket {
	return Ticket{
		Client: ParsePrincipal(client + "@" + realmWest),
		Server: ParsePrincipal(crossTGT),
	}
}

func transitiveTicket(client string) Ticket {
	return Ticket{
		Client: ParsePrincipal(client + "@" + realmFar),
		Server: ParsePrincipal(crossTGT),
	}
}

func serviceRequest() Request {
	return Request{Server: ParsePrincipal("host/server.east.example.com@" + realmEast)}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Enforcing: true}).Validate(); err != nil {
		t.Errorf("empty allowlist should be valid, got: %v", err)
	}
	if err := (Config{AllowedRealms: []string{realmWest}}).Validate(); err != nil {
		t.Errorf("valid allowlist rejected: %v", err)
	}

	err := (Config{AllowedRealms: []string{realmWest, ""}}).Validate()
	if err == nil {
		t.Fatal("expected empty realm name to be rejected")
	}
	if !IsCode(err, ErrConfig) {
		t.Errorf("expected Config error code, got %v", err)
	}
}

func TestDecide_PreapprovedRealmSkipsStore(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(Config{Enforcing: true, AllowedRealms: []string{realmWest}}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected pre-approved realm to be allowed")
	}
	if result.Status != "" {
		t.Errorf("expected empty status on clean allow, got %q", result.Status)
	}
	if store.calls() != 0 {
		t.Errorf("expected no store lookups for pre-approved realm, got %d", store.calls())
	}
}

func TestDecide_RealmACL(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		RealmAttributeKey(realmWest): "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected realm-scope grant to allow")
	}
	if result.Status != "" {
		t.Errorf("expected empty status on clean allow, got %q", result.Status)
	}
}

func TestDecide_RealmACLWrongRealm(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		RealmAttributeKey(realmFar): "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Allow {
		t.Error("expected grant for a different realm not to allow")
	}
}

func TestDecide_DirectPrincipalACL(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		AttrPrefix + "alice": "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected direct principal grant to allow")
	}

	// Another client from the same realm is not covered.
	result, err = engine.Decide(t.Context(), directTicket("bob"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Allow {
		t.Error("expected ungranted principal to be denied")
	}
}

func TestDecide_DirectHopIgnoresQualifiedKey(t *testing.T) {
	// A fully qualified grant must not match a direct hop: the direct
	// form is the unqualified name.
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		AttrPrefix + "alice@" + realmWest: "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Allow {
		t.Error("expected qualified grant not to match a direct hop")
	}
}

func TestDecide_TransitivePrincipalACL(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		AttrPrefix + "bob@" + realmFar: "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), transitiveTicket("bob"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected transitive principal grant to allow")
	}
}

func TestDecide_TransitiveHopIgnoresUnqualifiedKey(t *testing.T) {
	// An unqualified grant covers only the directly trusted realm. A
	// transitively arriving client with the same name must not match.
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		AttrPrefix + "bob": "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), transitiveTicket("bob"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Allow {
		t.Error("expected unqualified grant not to match a transitive hop")
	}
}

func TestDecide_EmptyAttributeValueGrants(t *testing.T) {
	// Only key presence matters; the value is irrelevant and typically
	// empty.
	store := newFakeStore()
	store.addEntry(crossTGT, map[string]string{
		RealmAttributeKey(realmWest): "",
	})
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected empty-valued attribute to grant")
	}
}

func TestDecide_EnforcingDeny(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, nil)
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Allow {
		t.Error("expected enforcing mode to deny")
	}
	want := "xrealmauthz plugin denied from " + realmWest
	if result.Status != want {
		t.Errorf("denial status = %q, want %q", result.Status, want)
	}
}

func TestDecide_AuditModeAllowsWithStatus(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, nil)
	engine := NewEngine(Config{Enforcing: false}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected audit mode to allow")
	}
	want := fmt.Sprintf("xrealmauthz plugin would deny alice@%s for host/server.east.example.com@%s from %s",
		realmWest, realmEast, realmWest)
	if result.Status != want {
		t.Errorf("would-deny status = %q, want %q", result.Status, want)
	}
}

func TestDecide_LookupFailureIsError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("database unavailable")
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err == nil {
		t.Fatal("expected lookup failure to be an error, got a verdict")
	}
	if !IsCode(err, ErrLookup) {
		t.Errorf("expected Lookup error code, got %v", err)
	}
	if result != (DecisionResult{}) {
		t.Errorf("expected zero result on error, got %+v", result)
	}
}

func TestDecide_MissingPrincipalIsError(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(Config{Enforcing: true}, store)

	_, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err == nil {
		t.Fatal("expected missing TGT entry to be an error")
	}
	if !IsCode(err, ErrLookup) {
		t.Errorf("expected Lookup error code, got %v", err)
	}
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Errorf("expected wrapped ErrPrincipalNotFound, got %v", err)
	}
}

func TestDecide_AttributeReadError(t *testing.T) {
	store := newFakeStore()
	e := store.addEntry(crossTGT, nil)
	e.readErr = map[string]error{
		RealmAttributeKey(realmWest): errors.New("corrupt attribute"),
	}
	engine := NewEngine(Config{Enforcing: true}, store)

	_, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err == nil {
		t.Fatal("expected unreadable attribute to be an error")
	}
	if !IsCode(err, ErrAttributeRead) {
		t.Errorf("expected AttributeRead error code, got %v", err)
	}
}

func TestDecide_EntryClosedOnAllPaths(t *testing.T) {
	cases := []struct {
		name  string
		attrs map[string]string
	}{
		{"allow", map[string]string{RealmAttributeKey(realmWest): ""}},
		{"deny", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			e := store.addEntry(crossTGT, tc.attrs)
			engine := NewEngine(Config{Enforcing: true}, store)

			if _, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest()); err != nil {
				t.Fatalf("Decide failed: %v", err)
			}
			if !e.closed {
				t.Error("expected entry to be closed after the decision")
			}
		})
	}
}

func TestDecide_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.addEntry(crossTGT, nil)
	engine := NewEngine(Config{Enforcing: true}, store)

	var first DecisionResult
	for i := 0; i < 5; i++ {
		result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
		if err != nil {
			t.Fatalf("Decide %d failed: %v", i, err)
		}
		if i == 0 {
			first = result
			continue
		}
		if result != first {
			t.Errorf("Decide %d = %+v, want %+v", i, result, first)
		}
	}
	if store.calls() != 5 {
		t.Errorf("expected the store to be consulted on every call, got %d lookups", store.calls())
	}
}

func TestDecide_ConcurrentDecisions(t *testing.T) {
	// Concurrent denials from different realms must each carry their own
	// realm in the status.
	const n = 32
	store := newFakeStore()
	engine := NewEngine(Config{Enforcing: true}, store)

	tickets := make([]Ticket, n)
	for i := range tickets {
		realm := fmt.Sprintf("R%d.EXAMPLE.COM", i)
		tgt := fmt.Sprintf("krbtgt/%s@%s", realmEast, realm)
		store.addEntry(tgt, nil)
		tickets[i] = Ticket{
			Client: ParsePrincipal("alice@" + realm),
			Server: ParsePrincipal(tgt),
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([]DecisionResult, n)
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Decide(t.Context(), tickets[i], serviceRequest())
		}(i)
	}
	wg.Wait()

	for i := range tickets {
		if errs[i] != nil {
			t.Fatalf("Decide %d failed: %v", i, errs[i])
		}
		want := fmt.Sprintf("xrealmauthz plugin denied from R%d.EXAMPLE.COM", i)
		if results[i].Status != want {
			t.Errorf("decision %d status = %q, want %q", i, results[i].Status, want)
		}
	}
}

func TestDecide_CheckOrder(t *testing.T) {
	// A realm-scope grant must decide before the principal-scope check:
	// an attribute read error on the principal key is never reached when
	// the realm key grants.
	store := newFakeStore()
	e := store.addEntry(crossTGT, map[string]string{
		RealmAttributeKey(realmWest): "",
	})
	e.readErr = map[string]error{
		AttrPrefix + "alice": errors.New("must not be read"),
	}
	engine := NewEngine(Config{Enforcing: true}, store)

	result, err := engine.Decide(t.Context(), directTicket("alice"), serviceRequest())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if !result.Allow {
		t.Error("expected realm grant to allow before the principal check")
	}
}
