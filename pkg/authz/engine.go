package authz

import (
	"context"
	"time"

	"github.com/crossrealm/xrealmd/internal/logger"
)

// Config holds the engine's process-lifetime policy settings. It is
// consumed once by NewEngine and never mutated afterwards.
type Config struct {
	// Enforcing selects between enforcing mode (failed checks deny) and
	// audit mode (failed checks allow but report a would-deny status).
	Enforcing bool

	// AllowedRealms are pre-approved without any attribute lookup.
	AllowedRealms []string
}

// Validate reports malformed policy configuration. An absent allowlist
// is valid; an empty realm name inside it is not.
func (c Config) Validate() error {
	for _, r := range c.AllowedRealms {
		if r == "" {
			return NewConfigError("allowed realm name must not be empty", nil)
		}
	}
	return nil
}

// Option customizes engine construction.
type Option func(*Engine)

// WithTrustClassifier replaces the default realm-equality classifier
// with a host-supplied trust-path relation.
func WithTrustClassifier(tc TrustClassifier) Option {
	return func(e *Engine) { e.trust = tc }
}

// WithMetrics attaches decision metrics. A nil value disables them with
// zero overhead.
func WithMetrics(m *DecisionMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine decides cross-realm authorization. It holds only immutable
// state and is safe for arbitrarily many concurrent Decide calls.
type Engine struct {
	allowlist *Allowlist
	enforcing bool
	store     AttributeStore
	trust     TrustClassifier
	metrics   *DecisionMetrics
}

// NewEngine builds an engine from policy configuration and an attribute
// store adapter.
func NewEngine(cfg Config, store AttributeStore, opts ...Option) *Engine {
	e := &Engine{
		allowlist: NewAllowlist(cfg.AllowedRealms),
		enforcing: cfg.Enforcing,
		store:     store,
		trust:     RealmEquality(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enforcing reports whether the engine denies on failed checks.
func (e *Engine) Enforcing() bool { return e.enforcing }

// PreapprovedRealms returns the number of configured allowlist entries.
func (e *Engine) PreapprovedRealms() int { return e.allowlist.Len() }

// Decision outcomes for metrics labels.
const (
	resultPreapproved  = "preapproved"
	resultRealmACL     = "realm_acl"
	resultPrincipalACL = "principal_acl"
	resultDenied       = "denied"
	resultWouldDeny    = "would_deny"
)

// Decide evaluates a cross-realm TGS request.
//
// The caller must invoke Decide only for genuinely cross-realm requests;
// same-realm requests short-circuit to allow before the engine is
// reached (see Policy.CheckTGS).
//
// A non-nil error means the decision could not be made at all — the TGT
// entry was unretrievable or an attribute was unreadable. That is an
// infrastructure failure distinct from a deny verdict, and callers must
// not treat it as either allow or deny.
func (e *Engine) Decide(ctx context.Context, ticket Ticket, request Request) (DecisionResult, error) {
	start := time.Now()
	res, outcome, err := e.decide(ctx, ticket, request)
	if err != nil {
		e.metrics.ObserveStoreError()
		return DecisionResult{}, err
	}
	e.metrics.ObserveDecision(outcome, time.Since(start))
	return res, nil
}

func (e *Engine) decide(ctx context.Context, ticket Ticket, request Request) (DecisionResult, string, error) {
	// Pre-approved realms skip the database round trip entirely.
	if e.allowlist.Contains(ticket.Client.Realm) {
		return DecisionResult{Allow: true}, resultPreapproved, nil
	}

	// One entry fetch serves both attribute checks.
	entry, err := e.store.GetEntry(ctx, ticket.Server)
	if err != nil {
		return DecisionResult{}, "", NewLookupError(ticket.Server, err)
	}
	defer entry.Close()

	allowed, err := attributePresent(entry, ticket.Server, RealmAttributeKey(ticket.Client.Realm))
	if err != nil {
		return DecisionResult{}, "", err
	}
	if allowed {
		return DecisionResult{Allow: true}, resultRealmACL, nil
	}

	direct := e.trust.DirectHop(ticket.Server, ticket.Client)
	allowed, err = attributePresent(entry, ticket.Server, PrincipalAttributeKey(ticket.Client, direct))
	if err != nil {
		return DecisionResult{}, "", err
	}
	if allowed {
		return DecisionResult{Allow: true}, resultPrincipalACL, nil
	}

	if e.enforcing {
		return DecisionResult{
			Allow:  false,
			Status: deniedStatus(ticket.Server.Realm),
		}, resultDenied, nil
	}

	// Audit mode: allow, but surface the full would-deny detail.
	status := wouldDenyStatus(ticket.Client, request.Server, ticket.Server.Realm)
	logger.Warn("cross-realm authorization would deny",
		logger.KeyClientPrincipal, ticket.Client.String(),
		logger.KeyServicePrincipal, request.Server.String(),
		logger.KeyServerRealm, ticket.Server.Realm,
	)
	return DecisionResult{Allow: true, Status: status}, resultWouldDeny, nil
}

// attributePresent checks whether an attribute key exists on the TGT
// entry. Only presence matters; the value is discarded.
func attributePresent(entry Entry, principal PrincipalIdentity, key string) (bool, error) {
	_, ok, err := entry.GetString(key)
	if err != nil {
		return false, NewAttributeReadError(principal, key, err)
	}
	return ok, nil
}
