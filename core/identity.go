package core

import "strings"

// Identity is the closed set of conversation participants. Decision logic
// works exclusively on these tagged values; free-form strings appear only at
// the display and parsing boundaries.
type Identity uint8

const (
	// IdentityUser is the external human participant.
	IdentityUser Identity = iota
	// IdentityOrchestrator is the coordinating agent. It is the only agent
	// whose messages are surfaced to the external caller and the fallback
	// speaker whenever selection cannot decide.
	IdentityOrchestrator
	// IdentitySpecialist is the delegated worker agent, typically the one
	// holding tool capabilities.
	IdentitySpecialist
)

// String returns the display projection of the identity.
func (i Identity) String() string {
	switch i {
	case IdentityUser:
		return "User"
	case IdentityOrchestrator:
		return "Orchestrator"
	case IdentitySpecialist:
		return "Specialist"
	default:
		return "Unknown"
	}
}

// IsAgent reports whether the identity belongs to a registered agent rather
// than the external user.
func (i Identity) IsAgent() bool {
	return i == IdentityOrchestrator || i == IdentitySpecialist
}

// ParseIdentity maps a display string back onto the closed identity set.
// Matching is case-insensitive and ignores surrounding whitespace. The
// boolean reports whether the input named a known identity; callers decide
// the fallback on false.
func ParseIdentity(s string) (Identity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return IdentityUser, true
	case "orchestrator":
		return IdentityOrchestrator, true
	case "specialist":
		return IdentitySpecialist, true
	default:
		return IdentityUser, false
	}
}
