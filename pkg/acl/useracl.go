package acl

import "strings"

// UserAcl is the compiled, immutable per-principal authorization value.
// Every method on UserAcl is read-only and referentially transparent: a
// *UserAcl may be shared across any number of goroutines without a mutex,
// and no method suspends, blocks, or performs I/O.
type UserAcl struct {
	UserDN      string
	userDNLower string

	GlobalAllow    Bitmap
	GlobalDeny     Bitmap
	GlobalAttrAcls map[string]ObjectAttributeAcl

	// Scoped is sorted by Priority ascending, stable for equal priorities.
	Scoped []ScopedEntry
}

// IsSelf reports whether targetDN is, case-insensitively, the principal's
// own DN.
func (u *UserAcl) IsSelf(targetDN string) bool {
	return strings.EqualFold(targetDN, u.UserDN)
}

// EffectivePermissions folds global allow/deny and every matching scoped
// entry, in ascending priority order, into the bitmap that applies to
// targetDN. Later entries are applied additively on top of earlier ones:
// allow unions its bits in, deny subtracts them, with no implicit
// precedence beyond priority order.
func (u *UserAcl) EffectivePermissions(targetDN string) Bitmap {
	targetLower := strings.ToLower(targetDN)
	isSelf := targetLower == u.userDNLower

	effective := u.GlobalAllow.Subtract(u.GlobalDeny)
	for _, entry := range u.Scoped {
		if !entry.matches(targetLower, isSelf) {
			continue
		}
		if entry.Deny {
			effective = effective.Subtract(entry.Permission)
		} else {
			effective = effective.Union(entry.Permission)
		}
	}
	return effective
}

// Check reports whether the principal holds every permission in required
// against targetDN. An empty required bitmap is trivially satisfied without
// consulting any rule, matching the directory's semantics that a
// zero-permission operation (e.g. an existence probe) needs no grant.
func (u *UserAcl) Check(targetDN string, required Bitmap) bool {
	if required.IsEmpty() {
		return true
	}
	return u.EffectivePermissions(targetDN).Has(required)
}

// resolveAttrFilter folds the global and every matching scoped
// ObjectAttributeAcl for objectType/action into the single effective
// AttributeFilter that governs targetDN. Allow entries merge their filter
// in (extending any whitelist); deny entries contribute only their denied
// names, never narrowing an existing whitelist.
func (u *UserAcl) resolveAttrFilter(targetDNLower string, isSelf bool, objectType, action string) AttributeFilter {
	filter := AllowAllFilter()
	if acl, ok := u.GlobalAttrAcls[objectType]; ok {
		filter = acl.filterFor(action)
	}

	for _, entry := range u.Scoped {
		if !entry.matches(targetDNLower, isSelf) {
			continue
		}
		acl, ok := entry.attrAclFor(objectType)
		if !ok {
			continue
		}
		entryFilter := acl.filterFor(action)
		if entry.Deny {
			// A fresh set, so the global filter's own denied map is never mutated.
			filter.denied = unionSets(filter.denied, entryFilter.denied)
		} else {
			filter = filter.Merge(entryFilter)
		}
	}
	return filter
}

// CheckAttribute reports whether the principal may perform action on
// attribute of objectType entries at targetDN, given they already hold
// required at the object level. The object-level check is evaluated first;
// failing it short-circuits to false regardless of attribute rules.
func (u *UserAcl) CheckAttribute(targetDN string, required Bitmap, objectType, action, attribute string) bool {
	if !u.Check(targetDN, required) {
		return false
	}
	targetLower := strings.ToLower(targetDN)
	isSelf := targetLower == u.userDNLower
	filter := u.resolveAttrFilter(targetLower, isSelf, objectType, action)
	return filter.IsAttributePermitted(attribute)
}

// FilterAttributes returns the subsequence of attrs that action permits on
// objectType entries at targetDN, after the same object-level gate as
// CheckAttribute. If the object-level check fails the result is empty.
func (u *UserAcl) FilterAttributes(targetDN string, required Bitmap, objectType, action string, attrs []string) []string {
	if !u.Check(targetDN, required) {
		return nil
	}
	targetLower := strings.ToLower(targetDN)
	isSelf := targetLower == u.userDNLower
	filter := u.resolveAttrFilter(targetLower, isSelf, objectType, action)

	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if filter.IsAttributePermitted(a) {
			out = append(out, a)
		}
	}
	return out
}
