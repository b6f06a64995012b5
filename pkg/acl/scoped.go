package acl

import "strings"

// ScopedEntry is the compiled form of one AclRow that is not purely global:
// either it names a specific scope DN, or it is self-only (which makes it a
// synthetic scope matching only the principal's own entry).
type ScopedEntry struct {
	DNLower    string
	Subtree    bool
	SelfOnly   bool
	Deny       bool
	Priority   int16
	Permission Bitmap
	AttrAcls   map[string]ObjectAttributeAcl
}

// matches reports whether this scoped entry applies to targetDNLower.
// isSelf must be precomputed by the caller as
// targetDNLower == userDNLower, case already folded on both sides.
func (e ScopedEntry) matches(targetDNLower string, isSelf bool) bool {
	if e.SelfOnly && !isSelf {
		return false
	}
	if e.Subtree {
		if e.DNLower == "" {
			return true
		}
		return targetDNLower == e.DNLower || strings.HasSuffix(targetDNLower, ","+e.DNLower)
	}
	return targetDNLower == e.DNLower
}

// attrAclFor returns the ObjectAttributeAcl this entry declares for
// objectType, and whether it declared one at all.
func (e ScopedEntry) attrAclFor(objectType string) (ObjectAttributeAcl, bool) {
	acl, ok := e.AttrAcls[objectType]
	return acl, ok
}
