package commission

// GuardOutcome is the pre-generation check result.
type GuardOutcome string

const (
	// GuardValid means generation may proceed unconditionally.
	GuardValid GuardOutcome = "valid"

	// GuardBlockedDuplicate means a non-cancelled professional commission
	// already exists for this appointment. Never overridable: it protects
	// against paying the same work twice.
	GuardBlockedDuplicate GuardOutcome = "blocked_duplicate"

	// GuardBlockedNoRule means resolution produced no professional rule.
	// Bypassable via an explicit human acknowledgement captured at
	// appointment completion; the bypass yields no professional commission
	// while seller and reception rules still generate normally.
	GuardBlockedNoRule GuardOutcome = "blocked_no_rule"
)

// CheckGuard evaluates the two blocking conditions. The duplicate check wins
// over the no-rule check: an already-generated appointment is blocked even if
// the rule set has since changed.
func CheckGuard(duplicateExists, professionalRuleFound bool) GuardOutcome {
	if duplicateExists {
		return GuardBlockedDuplicate
	}
	if !professionalRuleFound {
		return GuardBlockedNoRule
	}
	return GuardValid
}
