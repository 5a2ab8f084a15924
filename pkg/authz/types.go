package authz

import (
	"strings"

	"github.com/jcmturner/gokrb5/v8/iana/nametype"
	"github.com/jcmturner/gokrb5/v8/types"
)

// PrincipalIdentity is an authenticatable identity qualified by a realm.
// The name-component sequence reuses gokrb5's principal-name type so that
// identities taken from decrypted tickets can be passed through unchanged.
//
// Realms are opaque byte strings compared for exact equality; no case
// folding or normalization is ever applied.
type PrincipalIdentity struct {
	Name  types.PrincipalName
	Realm string
}

// NameString returns the principal name without the realm,
// components joined by "/" (e.g. "host/kdc1").
func (p PrincipalIdentity) NameString() string {
	return p.Name.PrincipalNameString()
}

// String returns the fully qualified principal, "name@REALM".
func (p PrincipalIdentity) String() string {
	return p.Name.PrincipalNameString() + "@" + p.Realm
}

// ParsePrincipal parses "name@REALM" into a PrincipalIdentity. The realm
// is everything after the last "@" so multi-component names survive.
// An input without "@" yields an identity with an empty realm.
func ParsePrincipal(s string) PrincipalIdentity {
	name := s
	realm := ""
	if i := strings.LastIndex(s, "@"); i >= 0 {
		name = s[:i]
		realm = s[i+1:]
	}
	return PrincipalIdentity{
		Name:  types.NewPrincipalName(nametype.KRB_NT_PRINCIPAL, name),
		Realm: realm,
	}
}

// Ticket carries the identities relevant to a cross-realm TGS request:
// the authenticated client from the ticket's decrypted part and the
// cross-realm ticket-granting principal that authorizes this hop.
// Ticket contents are supplied by the host; the engine never validates
// them cryptographically.
type Ticket struct {
	Client PrincipalIdentity
	Server PrincipalIdentity
}

// Request carries the originally requested service principal. It may
// differ from Ticket.Server and is used only in audit messages.
type Request struct {
	Server PrincipalIdentity
}

// DecisionResult is the engine's verdict. Status is empty on a clean
// allow; on a denial or an audit-mode would-deny it carries the
// human-readable status line, capped at MaxStatusLen bytes.
type DecisionResult struct {
	Allow  bool
	Status string
}

// TrustClassifier answers whether a cross-realm hop is direct or
// transits intermediate realms. The realm-hierarchy relation belongs to
// the host environment; the default classifier treats a hop as direct
// exactly when the cross-realm TGT principal's realm equals the client's
// authenticated realm.
type TrustClassifier interface {
	// DirectHop reports whether the path from the client's realm to
	// this KDC has no intermediate realm.
	DirectHop(server, client PrincipalIdentity) bool
}

type realmEquality struct{}

func (realmEquality) DirectHop(server, client PrincipalIdentity) bool {
	return server.Realm == client.Realm
}

// RealmEquality returns the default trust classifier.
func RealmEquality() TrustClassifier { return realmEquality{} }
