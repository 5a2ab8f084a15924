// Package authz implements cross-realm authorization decisions for a
// Kerberos ticket-granting service.
//
// When a TGS request crosses administrative realms, the engine decides
// whether a service ticket may be issued. A request is allowed when any
// of the following holds, checked in this order:
//
//  1. The client's realm is on the statically configured pre-approved
//     list (no database access on this path).
//  2. The cross-realm TGT principal's database entry carries a
//     realm-scope attribute "xr:@REALM" for the client's realm.
//  3. The entry carries a principal-scope attribute: "xr:name" for a
//     direct trust hop, or "xr:name@REALM" when authentication transited
//     intermediate realms.
//
// Only attribute presence matters; values are ignored. When no check
// matches, the verdict depends on the enforcing flag: enforcing denies
// with a realm-only status message, audit mode allows but reports the
// full would-deny detail for operator visibility during policy rollout.
//
// The engine owns no mutable state beyond the immutable allowlist, so
// any number of decisions may run concurrently against one Engine.
package authz
