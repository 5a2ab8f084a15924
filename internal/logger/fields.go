package logger

// Standard field keys for structured logging. Use these consistently
// across log statements so decisions can be aggregated and queried.
const (
	// Request correlation
	KeyRequestID = "request_id" // API request identifier

	// Kerberos identities
	KeyClientPrincipal  = "client_principal"  // fully qualified authenticated client
	KeyServicePrincipal = "service_principal" // originally requested service
	KeyTGTPrincipal     = "tgt_principal"     // cross-realm TGT principal
	KeyClientRealm      = "client_realm"      // client's authenticated realm
	KeyServerRealm      = "server_realm"      // realm of the TGT principal

	// Policy
	KeyEnforcing         = "enforcing"          // enforcing vs audit mode
	KeyPreapprovedRealms = "preapproved_realms" // allowlist entry count
	KeyDecision          = "decision"           // allow or deny
	KeyStatus            = "status"             // status line returned to the host
	KeyAttributeKey      = "attribute_key"      // derived xr: key

	// Store
	KeyBackend = "backend" // attribute store backend name
	KeyPath    = "path"    // store path on disk

	// Generic
	KeyError    = "error"
	KeyDuration = "duration_ms"
)
