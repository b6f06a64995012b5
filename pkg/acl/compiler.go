package acl

import (
	"sort"
	"strings"

	"github.com/heracles-ldap/aclcore/pkg/log"
)

var compileLog = log.New("acl")

// Compile folds rows, the flat sequence of AclRow values fetched for
// userDN, into a single immutable UserAcl. Compile is the only place in the
// core that builds a UserAcl; every field of the result is derived
// deterministically from rows, so compiling the same rows twice yields
// structurally equal values.
func Compile(userDN string, rows []AclRow) *UserAcl {
	u := &UserAcl{
		UserDN:         userDN,
		userDNLower:    strings.ToLower(userDN),
		GlobalAllow:    EmptyBitmap(),
		GlobalDeny:     EmptyBitmap(),
		GlobalAttrAcls: map[string]ObjectAttributeAcl{},
	}

	scoped := make([]ScopedEntry, 0, len(rows))

	for i, row := range rows {
		perms := row.permissions()
		attrAcls := foldAttrRules(row.AttrRules)

		if row.isGlobal() {
			if row.Deny {
				u.GlobalDeny = u.GlobalDeny.Union(perms)
				mergeGlobalDeny(u.GlobalAttrAcls, attrAcls)
			} else {
				u.GlobalAllow = u.GlobalAllow.Union(perms)
				mergeGlobalAllow(u.GlobalAttrAcls, attrAcls)
			}
			continue
		}

		scoped = append(scoped, ScopedEntry{
			DNLower:    strings.ToLower(row.ScopeDN),
			Subtree:    row.isSubtree(),
			SelfOnly:   row.SelfOnly,
			Deny:       row.Deny,
			Priority:   row.Priority,
			Permission: perms,
			AttrAcls:   attrAcls,
		})

		if row.PolicyName == "" {
			compileLog.Debug(nil, "compiled scoped rule %d for %s with no policy name", i, userDN)
		}
	}

	sort.SliceStable(scoped, func(i, j int) bool {
		return scoped[i].Priority < scoped[j].Priority
	})
	u.Scoped = scoped

	return u
}

// foldAttrRules groups one row's attribute rules by (object_type, action)
// and produces one AttributeFilter per group: every allow-type rule in the
// group unions its attributes into the whitelist, every deny-type rule
// unions into the deny set. The unspecified side of each object type is
// left allow-all.
func foldAttrRules(rules []AttrRule) map[string]ObjectAttributeAcl {
	if len(rules) == 0 {
		return map[string]ObjectAttributeAcl{}
	}

	type group struct {
		allowed    []string
		hasAllowed bool
		denied     []string
	}
	groups := map[[2]string]*group{}

	for _, r := range rules {
		action := strings.ToLower(r.Action)
		if action != "read" && action != "write" {
			continue // unknown action: silently ignored, filter stays allow-all
		}
		key := [2]string{r.ObjectType, action}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		switch strings.ToLower(r.RuleType) {
		case "allow":
			g.allowed = append(g.allowed, r.Attributes...)
			g.hasAllowed = true
		case "deny":
			g.denied = append(g.denied, r.Attributes...)
		}
	}

	out := map[string]ObjectAttributeAcl{}
	for key, g := range groups {
		objectType, action := key[0], key[1]
		var allowed []string
		if g.hasAllowed {
			allowed = g.allowed
		}
		filter := NewAttributeFilter(allowed, g.denied)

		acl, ok := out[objectType]
		if !ok {
			acl = NewObjectAttributeAcl()
		}
		if action == "read" {
			acl.Read = filter
		} else {
			acl.Write = filter
		}
		out[objectType] = acl
	}
	return out
}

// mergeGlobalAllow merges a row's attribute ACLs into the accumulated
// global set, read-with-read and write-with-write.
func mergeGlobalAllow(global map[string]ObjectAttributeAcl, rowAcls map[string]ObjectAttributeAcl) {
	for objectType, acl := range rowAcls {
		if existing, ok := global[objectType]; ok {
			global[objectType] = existing.Merge(acl)
		} else {
			global[objectType] = acl
		}
	}
}

// mergeGlobalDeny contributes only the denied attribute names from a deny
// row's ACLs: a deny policy names attributes to forbid, and its lack of an
// allow clause must never narrow an existing whitelist.
func mergeGlobalDeny(global map[string]ObjectAttributeAcl, rowAcls map[string]ObjectAttributeAcl) {
	for objectType, acl := range rowAcls {
		existing, ok := global[objectType]
		if !ok {
			existing = NewObjectAttributeAcl()
		}
		existing.Read.addDeniedSet(acl.Read.denied)
		existing.Write.addDeniedSet(acl.Write.denied)
		global[objectType] = existing
	}
}
