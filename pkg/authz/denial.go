package authz

import (
	"fmt"
	"unicode/utf8"
)

// MaxStatusLen is the byte cap on status messages returned to the host.
const MaxStatusLen = 256

// deniedStatus formats the enforcing-mode denial message. Only the realm
// appears here: the host's own logging already names the client and
// service principals, and the status line is visible to the protocol
// layer.
func deniedStatus(serverRealm string) string {
	return truncateStatus(fmt.Sprintf("xrealmauthz plugin denied from %s", serverRealm))
}

// wouldDenyStatus formats the audit-mode message with full detail: the
// fully qualified client, the originally requested service, and the
// realm of the TGT principal that authorized the hop.
func wouldDenyStatus(client, service PrincipalIdentity, serverRealm string) string {
	return truncateStatus(fmt.Sprintf("xrealmauthz plugin would deny %s for %s from %s",
		client.String(), service.String(), serverRealm))
}

// truncateStatus caps s at MaxStatusLen bytes, cutting back to the
// nearest rune boundary so a multi-byte sequence is never split.
// Truncation is silent; an oversized message is not an error.
func truncateStatus(s string) string {
	if len(s) <= MaxStatusLen {
		return s
	}
	cut := MaxStatusLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
