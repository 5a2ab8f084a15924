package authz

// Allowlist is an immutable set of pre-approved peer realms. It is built
// once at initialization and shared read-only across concurrent
// decisions, so no locking is needed.
//
// Membership is an exact byte comparison against every entry. The list
// is administrator-curated and small, so a linear scan is fine; entries
// are not deduplicated.
type Allowlist struct {
	realms []string
}

// NewAllowlist builds an allowlist from configured realm names. The
// slice is copied so later mutation of the input cannot leak into
// concurrent decisions. A nil or empty input produces an allowlist that
// never matches.
func NewAllowlist(realms []string) *Allowlist {
	l := &Allowlist{}
	if len(realms) > 0 {
		l.realms = make([]string, len(realms))
		copy(l.realms, realms)
	}
	return l
}

// Contains reports whether realm is pre-approved. Always false for an
// empty allowlist.
func (l *Allowlist) Contains(realm string) bool {
	if l == nil {
		return false
	}
	for _, r := range l.realms {
		if r == realm {
			return true
		}
	}
	return false
}

// Len returns the number of configured entries.
func (l *Allowlist) Len() int {
	if l == nil {
		return 0
	}
	return len(l.realms)
}
