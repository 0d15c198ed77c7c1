package core

import "testing"

func TestParseIdentity(t *testing.T) {
	cases := []struct {
		in   string
		want Identity
		ok   bool
	}{
		{"Orchestrator", IdentityOrchestrator, true},
		{"orchestrator", IdentityOrchestrator, true},
		{"  SPECIALIST \n", IdentitySpecialist, true},
		{"user", IdentityUser, true},
		{"GitHubSpecialist", IdentityUser, false},
		{"", IdentityUser, false},
		{"coordinator", IdentityUser, false},
	}
	for _, tc := range cases {
		got, ok := ParseIdentity(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseIdentity(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIdentity_StringRoundTrip(t *testing.T) {
	for _, id := range []Identity{IdentityUser, IdentityOrchestrator, IdentitySpecialist} {
		parsed, ok := ParseIdentity(id.String())
		if !ok || parsed != id {
			t.Errorf("round trip failed for %v: got (%v, %v)", id, parsed, ok)
		}
	}
}

func TestIdentity_IsAgent(t *testing.T) {
	if IdentityUser.IsAgent() {
		t.Error("user must not count as an agent")
	}
	if !IdentityOrchestrator.IsAgent() || !IdentitySpecialist.IsAgent() {
		t.Error("orchestrator and specialist are agents")
	}
}
