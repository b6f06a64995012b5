package acl

import "strings"

// AttrRule is one attribute-level clause attached to a policy: it names an
// object type, the action it governs, whether it allows or denies, and the
// concrete attribute names affected. The loader is responsible for
// expanding attribute-group identifiers into concrete names before the
// compiler ever sees a rule.
type AttrRule struct {
	ObjectType string
	Action     string // "read" or "write"; anything else is ignored
	RuleType   string // "allow" or "deny"
	Attributes []string
}

// AclRow is the external input contract: the join of one assignment, its
// policy's permission bitmap halves, and that policy's expanded attribute
// rules. PolicyName exists for diagnostics only and never affects
// evaluation.
type AclRow struct {
	PolicyName string

	PermLow  int64
	PermHigh int64

	// ScopeDN is already lowercase; empty denotes global scope.
	ScopeDN string
	// ScopeType is "base" or "subtree", case-insensitive; unrecognized
	// values are treated as "base". Ignored when ScopeDN is empty.
	ScopeType string
	SelfOnly  bool
	Deny      bool
	Priority  int16

	AttrRules []AttrRule
}

// isGlobal reports whether this row contributes to the global allow/deny
// sets rather than to a scoped entry.
func (r AclRow) isGlobal() bool {
	return r.ScopeDN == "" && !r.SelfOnly
}

// isSubtree reports the row's scope-type, defaulting unknown strings to
// base scope (the conservative, narrower interpretation). A row with an
// empty ScopeDN (a self-only row) is always subtree over the empty DN, so
// its scoped entry matches the principal's own entry whatever ScopeType says.
func (r AclRow) isSubtree() bool {
	if r.ScopeDN == "" {
		return true
	}
	return strings.EqualFold(r.ScopeType, "subtree")
}

func (r AclRow) permissions() Bitmap {
	return FromHalves(r.PermLow, r.PermHigh)
}
