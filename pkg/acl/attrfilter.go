package acl

import "strings"

// AttributeFilter is a semantic set-gate over attribute names. An absent
// allowed set means "allow everything not denied"; a present allowed set
// (even an empty one) switches the filter into whitelist mode. denied is
// always applied on top and always wins. Attribute names are normalized to
// ASCII-lowercase both at construction and at query time, so callers may
// pass attributes in whatever case the directory schema authored them.
type AttributeFilter struct {
	allowed    map[string]struct{}
	hasAllowed bool
	denied     map[string]struct{}
}

// AllowAllFilter returns the unrestricted filter: every attribute not
// explicitly denied is permitted.
func AllowAllFilter() AttributeFilter {
	return AttributeFilter{denied: map[string]struct{}{}}
}

// DenyAllFilter returns a filter with an empty whitelist, permitting
// nothing.
func DenyAllFilter() AttributeFilter {
	return AttributeFilter{allowed: map[string]struct{}{}, hasAllowed: true, denied: map[string]struct{}{}}
}

// WithAllowed returns a whitelist-mode filter containing exactly the given
// attribute names.
func WithAllowed(names ...string) AttributeFilter {
	if names == nil {
		names = []string{}
	}
	return NewAttributeFilter(names, nil)
}

// WithDenied returns an unrestricted filter that additionally denies the
// given attribute names.
func WithDenied(names ...string) AttributeFilter {
	return NewAttributeFilter(nil, names)
}

// NewAttributeFilter builds a filter from an optional allow list and a deny
// list. Pass allowed == nil for "allow everything not denied"; pass a
// non-nil (possibly empty) slice to switch into whitelist mode.
func NewAttributeFilter(allowed []string, denied []string) AttributeFilter {
	f := AttributeFilter{denied: toLowerSet(denied)}
	if allowed != nil {
		f.allowed = toLowerSet(allowed)
		f.hasAllowed = true
	}
	return f
}

func toLowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

// IsAllowAll reports whether the filter is the fully unrestricted filter:
// no whitelist and nothing denied.
func (f AttributeFilter) IsAllowAll() bool {
	return !f.hasAllowed && len(f.denied) == 0
}

// IsAttributePermitted reports whether name may be read or written under
// this filter: denied always wins; absent a whitelist, everything else is
// permitted; with a whitelist, membership decides.
func (f AttributeFilter) IsAttributePermitted(name string) bool {
	lower := strings.ToLower(name)
	if _, denied := f.denied[lower]; denied {
		return false
	}
	if !f.hasAllowed {
		return true
	}
	_, ok := f.allowed[lower]
	return ok
}

// Denies reports whether name is in the filter's deny set specifically,
// independent of whitelist membership, as merge-monotonicity checks need.
func (f AttributeFilter) Denies(name string) bool {
	_, ok := f.denied[strings.ToLower(name)]
	return ok
}

// Merge combines f with other to produce the filter a principal subject to
// both policies simultaneously would observe: denials from either side
// always apply, and a whitelist from either side is respected, because a
// policy can only ever grant further access on top of what another policy
// already grants.
func (f AttributeFilter) Merge(other AttributeFilter) AttributeFilter {
	merged := AttributeFilter{denied: unionSets(f.denied, other.denied)}

	switch {
	case f.hasAllowed && other.hasAllowed:
		merged.allowed = unionSets(f.allowed, other.allowed)
		merged.hasAllowed = true
	case f.hasAllowed:
		merged.allowed = cloneSet(f.allowed)
		merged.hasAllowed = true
	case other.hasAllowed:
		merged.allowed = cloneSet(other.allowed)
		merged.hasAllowed = true
	}
	return merged
}

func unionSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func cloneSet(a map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for k := range a {
		out[k] = struct{}{}
	}
	return out
}

// AddAllowed promotes the filter into whitelist mode (if not already) and
// adds name to it. An unrestricted filter becomes a whitelist containing
// only the added names; repeated calls extend the whitelist.
func (f *AttributeFilter) AddAllowed(names ...string) {
	if !f.hasAllowed {
		f.allowed = map[string]struct{}{}
		f.hasAllowed = true
	}
	for _, n := range names {
		f.allowed[strings.ToLower(n)] = struct{}{}
	}
}

// AddDenied unions names into the deny set unconditionally.
func (f *AttributeFilter) AddDenied(names ...string) {
	if f.denied == nil {
		f.denied = map[string]struct{}{}
	}
	for _, n := range names {
		f.denied[strings.ToLower(n)] = struct{}{}
	}
}

// addDeniedSet is AddDenied over a set instead of a slice, used internally
// when propagating a deny filter's own denied set into another filter.
func (f *AttributeFilter) addDeniedSet(names map[string]struct{}) {
	if len(names) == 0 {
		return
	}
	if f.denied == nil {
		f.denied = map[string]struct{}{}
	}
	for n := range names {
		f.denied[n] = struct{}{}
	}
}

// ObjectAttributeAcl pairs the read and write attribute filters that apply
// to entries of one object type (e.g. "user", "group").
type ObjectAttributeAcl struct {
	Read  AttributeFilter
	Write AttributeFilter
}

// NewObjectAttributeAcl returns a pair with both sides defaulting to
// allow-all; callers set Read/Write explicitly for the sides a rule names.
func NewObjectAttributeAcl() ObjectAttributeAcl {
	return ObjectAttributeAcl{Read: AllowAllFilter(), Write: AllowAllFilter()}
}

// Merge combines two ACLs for the same object type read-with-read and
// write-with-write.
func (o ObjectAttributeAcl) Merge(other ObjectAttributeAcl) ObjectAttributeAcl {
	return ObjectAttributeAcl{
		Read:  o.Read.Merge(other.Read),
		Write: o.Write.Merge(other.Write),
	}
}

// filterFor returns the Read or Write side for the given action, or the
// allow-all filter for any other action string (compiler treats unknown
// actions as no-ops, never as a narrowing).
func (o ObjectAttributeAcl) filterFor(action string) AttributeFilter {
	switch strings.ToLower(action) {
	case "read":
		return o.Read
	case "write":
		return o.Write
	default:
		return AllowAllFilter()
	}
}
