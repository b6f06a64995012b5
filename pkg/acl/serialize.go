package acl

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/heracles-ldap/aclcore/pkg/errtypes"
)

// MarshalJSON renders the bitmap as its stable two-halves storage form.
func (b Bitmap) MarshalJSON() ([]byte, error) {
	low, high := b.ToHalves()
	return json.Marshal(struct {
		Low  int64 `json:"low"`
		High int64 `json:"high"`
	}{low, high})
}

// UnmarshalJSON is the exact inverse of MarshalJSON.
func (b *Bitmap) UnmarshalJSON(data []byte) error {
	var wire struct {
		Low  int64 `json:"low"`
		High int64 `json:"high"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return errtypes.MalformedSerialization("bitmap: " + err.Error())
	}
	*b = FromHalves(wire.Low, wire.High)
	return nil
}

type attributeFilterWire struct {
	Allowed []string `json:"allowed,omitempty"`
	// HasAllowed disambiguates "no allowed field" from "allowed is the
	// empty whitelist", both of which marshal Allowed as an empty/missing
	// array under omitempty.
	HasAllowed bool     `json:"has_allowed"`
	Denied     []string `json:"denied,omitempty"`
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the filter as its allowed/denied name sets, preserving
// the absent-vs-empty-whitelist distinction via an explicit flag.
func (f AttributeFilter) MarshalJSON() ([]byte, error) {
	wire := attributeFilterWire{
		HasAllowed: f.hasAllowed,
		Denied:     sortedKeys(f.denied),
	}
	if f.hasAllowed {
		wire.Allowed = sortedKeys(f.allowed)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON is the exact inverse of MarshalJSON.
func (f *AttributeFilter) UnmarshalJSON(data []byte) error {
	var wire attributeFilterWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errtypes.MalformedSerialization("attribute filter: " + err.Error())
	}
	*f = AttributeFilter{denied: toLowerSet(wire.Denied)}
	if wire.HasAllowed {
		f.allowed = toLowerSet(wire.Allowed)
		f.hasAllowed = true
	}
	return nil
}

type userAclWire struct {
	UserDN         string                         `json:"user_dn"`
	GlobalAllow    Bitmap                         `json:"global_allow"`
	GlobalDeny     Bitmap                         `json:"global_deny"`
	GlobalAttrAcls map[string]ObjectAttributeAcl  `json:"global_attr_acls,omitempty"`
	Scoped         []scopedEntryWire              `json:"scoped,omitempty"`
}

type scopedEntryWire struct {
	DNLower    string                        `json:"dn_lower"`
	Subtree    bool                          `json:"subtree"`
	SelfOnly   bool                          `json:"self_only"`
	Deny       bool                          `json:"deny"`
	Priority   int16                         `json:"priority"`
	Permission Bitmap                        `json:"permission"`
	AttrAcls   map[string]ObjectAttributeAcl `json:"attr_acls,omitempty"`
}

// MarshalJSON renders the compiled value in full: UserDN and the lowercase
// comparison form it was compiled with are the only overlapping pair of
// fields, and only UserDN is stored; UnmarshalJSON recomputes the lowercase
// form rather than trusting a second copy of it on the wire.
func (u UserAcl) MarshalJSON() ([]byte, error) {
	wire := userAclWire{
		UserDN:         u.UserDN,
		GlobalAllow:    u.GlobalAllow,
		GlobalDeny:     u.GlobalDeny,
		GlobalAttrAcls: u.GlobalAttrAcls,
	}
	for _, e := range u.Scoped {
		wire.Scoped = append(wire.Scoped, scopedEntryWire{
			DNLower:    e.DNLower,
			Subtree:    e.Subtree,
			SelfOnly:   e.SelfOnly,
			Deny:       e.Deny,
			Priority:   e.Priority,
			Permission: e.Permission,
			AttrAcls:   e.AttrAcls,
		})
	}
	return json.Marshal(wire)
}

// UnmarshalJSON is the exact inverse of MarshalJSON.
func (u *UserAcl) UnmarshalJSON(data []byte) error {
	var wire userAclWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errtypes.MalformedSerialization("user acl: " + err.Error())
	}
	u.UserDN = wire.UserDN
	u.userDNLower = strings.ToLower(wire.UserDN)
	u.GlobalAllow = wire.GlobalAllow
	u.GlobalDeny = wire.GlobalDeny
	u.GlobalAttrAcls = wire.GlobalAttrAcls
	if u.GlobalAttrAcls == nil {
		u.GlobalAttrAcls = map[string]ObjectAttributeAcl{}
	}
	u.Scoped = make([]ScopedEntry, len(wire.Scoped))
	for i, e := range wire.Scoped {
		u.Scoped[i] = ScopedEntry{
			DNLower:    e.DNLower,
			Subtree:    e.Subtree,
			SelfOnly:   e.SelfOnly,
			Deny:       e.Deny,
			Priority:   e.Priority,
			Permission: e.Permission,
			AttrAcls:   e.AttrAcls,
		}
	}
	return nil
}
