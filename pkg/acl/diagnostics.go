package acl

import (
	"strings"

	"github.com/armon/go-radix"
)

// ScopeIndex is a diagnostic-only index over a UserAcl's scoped entries,
// built for administrative tooling (e.g. "which rules could ever match
// somewhere under this branch of the tree?"). It is never consulted by
// Check, CheckAttribute or FilterAttributes: the hot evaluation path stays
// a single linear scan with one conditional branch per scoped entry, as the
// core requires. Building the index is O(n log n) and is expected to run
// once per UserAcl, not per request.
type ScopeIndex struct {
	// tree is keyed by the DN reversed component-wise, so that a radix
	// prefix walk from a reversed target DN naturally visits ancestor
	// scopes first (a plain suffix match on unreversed DNs has no useful
	// radix-tree representation, since radix indexes share prefixes, not
	// suffixes).
	tree *radix.Tree
}

// BuildScopeIndex indexes every scoped entry in u by its DN.
func BuildScopeIndex(u *UserAcl) *ScopeIndex {
	tree := radix.New()
	for i, e := range u.Scoped {
		key := reverseDN(e.DNLower)
		entries, _ := tree.Get(key)
		list, _ := entries.([]int)
		tree.Insert(key, append(list, i))
	}
	return &ScopeIndex{tree: tree}
}

// reverseDN reverses a DN's RDN components so that shared suffixes (the
// directory-tree ancestry all DN comparisons actually care about) become
// shared prefixes, which is what a radix tree indexes efficiently.
func reverseDN(dnLower string) string {
	if dnLower == "" {
		return ""
	}
	parts := strings.Split(dnLower, ",")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ",")
}

// ScopesUnder returns every scoped entry whose DN is targetDN itself or an
// ancestor of it (i.e. every entry that could plausibly match some subtree
// rooted below targetDN), for display in an admin UI. It does not evaluate
// self-only or priority semantics; callers wanting an actual verdict should
// use UserAcl.Check.
func (idx *ScopeIndex) ScopesUnder(u *UserAcl, targetDN string) []ScopedEntry {
	reversedTarget := reverseDN(strings.ToLower(targetDN))
	var out []ScopedEntry
	idx.tree.WalkPath(reversedTarget, func(key string, v interface{}) bool {
		// WalkPath visits every string prefix; keep whole-component ancestors
		// only, so "dc=x,ou=a" is not reported for "dc=x,ou=ab".
		if key != "" && key != reversedTarget && !strings.HasPrefix(reversedTarget, key+",") {
			return false
		}
		for _, i := range v.([]int) {
			out = append(out, u.Scoped[i])
		}
		return false
	})
	return out
}
