package authz

import "testing"

func TestAllowlist_Empty(t *testing.T) {
	l := NewAllowlist(nil)
	if l.Contains("WEST.EXAMPLE.COM") {
		t.Error("empty allowlist must never match")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}

func TestAllowlist_ExactMatch(t *testing.T) {
	l := NewAllowlist([]string{"WEST.EXAMPLE.COM", "FAR.EXAMPLE.COM"})
	if !l.Contains("WEST.EXAMPLE.COM") {
		t.Error("expected configured realm to match")
	}
	if !l.Contains("FAR.EXAMPLE.COM") {
		t.Error("expected configured realm to match")
	}
	if l.Contains("EAST.EXAMPLE.COM") {
		t.Error("expected unconfigured realm not to match")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestAllowlist_CaseSensitive(t *testing.T) {
	// Realms are opaque byte strings; no case folding.
	l := NewAllowlist([]string{"WEST.EXAMPLE.COM"})
	if l.Contains("west.example.com") {
		t.Error("matching must be byte-exact, not case-insensitive")
	}
}

func TestAllowlist_CopiesInput(t *testing.T) {
	realms := []string{"WEST.EXAMPLE.COM"}
	l := NewAllowlist(realms)
	realms[0] = "EVIL.EXAMPLE.COM"

	if !l.Contains("WEST.EXAMPLE.COM") {
		t.Error("mutating the input slice must not affect the allowlist")
	}
	if l.Contains("EVIL.EXAMPLE.COM") {
		t.Error("mutating the input slice must not affect the allowlist")
	}
}

func TestAllowlist_Nil(t *testing.T) {
	var l *Allowlist
	if l.Contains("WEST.EXAMPLE.COM") {
		t.Error("nil allowlist must never match")
	}
	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}
