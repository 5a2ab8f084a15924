package authz

// AttrPrefix is the namespace prefix for cross-realm authorization
// attributes on TGT principal entries.
const AttrPrefix = "xr:"

// RealmAttributeKey derives the realm-scope attribute key for a client
// realm: "xr:@REALM". The "@" follows the prefix immediately, with no
// separator before the realm.
func RealmAttributeKey(realm string) string {
	return AttrPrefix + "@" + realm
}

// PrincipalAttributeKey derives the principal-scope attribute key for a
// client identity.
//
// For a direct trust hop the key omits the realm ("xr:name"): the client
// is structurally guaranteed to originate from the directly trusted
// realm, so a grant applies to the principal regardless of transit path.
// For a transitive path the key is fully qualified ("xr:name@REALM") so
// identically named principals from different origin realms cannot be
// confused.
func PrincipalAttributeKey(client PrincipalIdentity, direct bool) string {
	if direct {
		return AttrPrefix + client.NameString()
	}
	return AttrPrefix + client.String()
}
