package authz

import (
	"context"

	"github.com/crossrealm/xrealmd/internal/logger"
)

// TGSPolicy is the capability a KDC host invokes for each TGS request.
// It mirrors the init/check/shutdown dispatch shape of KDC policy
// plugins: the host constructs the policy once at startup, calls
// CheckTGS on the request path, and calls Shutdown once at teardown.
type TGSPolicy interface {
	// Name identifies the policy in host logs.
	Name() string

	// CheckTGS evaluates a TGS request. Same-realm requests are allowed
	// unconditionally; cross-realm requests go through the engine.
	CheckTGS(ctx context.Context, ticket Ticket, request Request) (DecisionResult, error)

	// Shutdown releases policy resources. Called once, outside the
	// concurrent request path.
	Shutdown()
}

// Policy is the engine-backed TGSPolicy implementation.
type Policy struct {
	engine *Engine
}

// NewPolicy wraps an engine in the host-facing policy interface and
// logs the load line operators watch for during rollout.
func NewPolicy(engine *Engine) *Policy {
	logger.Info("xrealmauthz cross-realm authorization plugin loaded",
		logger.KeyEnforcing, engine.Enforcing(),
		logger.KeyPreapprovedRealms, engine.PreapprovedRealms(),
	)
	return &Policy{engine: engine}
}

// Name returns the policy module name.
func (p *Policy) Name() string { return "xrealmauthz" }

// CheckTGS implements TGSPolicy. The cross-realm precondition of
// Engine.Decide is enforced here: when the requested service's realm
// matches the client's authenticated realm the request never touches
// the engine.
func (p *Policy) CheckTGS(ctx context.Context, ticket Ticket, request Request) (DecisionResult, error) {
	if request.Server.Realm == ticket.Client.Realm {
		return DecisionResult{Allow: true}, nil
	}
	return p.engine.Decide(ctx, ticket, request)
}

// Shutdown implements TGSPolicy. The engine holds no resources of its
// own; the attribute store is closed by whoever opened it.
func (p *Policy) Shutdown() {}
