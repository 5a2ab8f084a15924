package authz

import "testing"

func TestParsePrincipal(t *testing.T) {
	cases := []struct {
		in    string
		name  string
		realm string
	}{
		{"alice@WEST.EXAMPLE.COM", "alice", "WEST.EXAMPLE.COM"},
		{"host/kdc1@WEST.EXAMPLE.COM", "host/kdc1", "WEST.EXAMPLE.COM"},
		{"krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM", "krbtgt/EAST.EXAMPLE.COM", "WEST.EXAMPLE.COM"},
		{"alice", "alice", ""},
	}
	for _, tc := range cases {
		p := ParsePrincipal(tc.in)
		if p.NameString() != tc.name {
			t.Errorf("ParsePrincipal(%q).NameString() = %q, want %q", tc.in, p.NameString(), tc.name)
		}
		if p.Realm != tc.realm {
			t.Errorf("ParsePrincipal(%q).Realm = %q, want %q", tc.in, p.Realm, tc.realm)
		}
	}
}

func TestPrincipalIdentity_String(t *testing.T) {
	p := ParsePrincipal("host/server.east.example.com@EAST.EXAMPLE.COM")
	want := "host/server.east.example.com@EAST.EXAMPLE.COM"
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}

func TestRealmEquality(t *testing.T) {
	tc := RealmEquality()

	server := ParsePrincipal("krbtgt/EAST.EXAMPLE.COM@WEST.EXAMPLE.COM")
	direct := ParsePrincipal("alice@WEST.EXAMPLE.COM")
	transitive := ParsePrincipal("bob@FAR.EXAMPLE.COM")

	if !tc.DirectHop(server, direct) {
		t.Error("expected matching realms to classify as a direct hop")
	}
	if tc.DirectHop(server, transitive) {
		t.Error("expected differing realms to classify as transitive")
	}
}
