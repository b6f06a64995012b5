package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeFilterAllowAllPermitsEverything(t *testing.T) {
	f := AllowAllFilter()
	assert.True(t, f.IsAllowAll())
	for _, name := range []string{"cn", "mail", "userPassword", "anything"} {
		assert.True(t, f.IsAttributePermitted(name))
	}
}

func TestAttributeFilterDenyAllPermitsNothing(t *testing.T) {
	f := DenyAllFilter()
	assert.False(t, f.IsAllowAll())
	for _, name := range []string{"cn", "mail"} {
		assert.False(t, f.IsAttributePermitted(name))
	}
}

func TestAttributeFilterCaseInsensitive(t *testing.T) {
	f := WithAllowed("cn", "mail")
	assert.True(t, f.IsAttributePermitted("CN"))
	assert.True(t, f.IsAttributePermitted("cn"))
	assert.True(t, f.IsAttributePermitted("Cn"))
	assert.False(t, f.IsAttributePermitted("sn"))
}

func TestAttributeFilterDenyOverridesAllow(t *testing.T) {
	f := NewAttributeFilter([]string{"cn", "mail", "userPassword"}, []string{"userPassword"})
	assert.True(t, f.IsAttributePermitted("cn"))
	assert.True(t, f.IsAttributePermitted("mail"))
	assert.False(t, f.IsAttributePermitted("userPassword"))
	assert.False(t, f.IsAttributePermitted("userpassword"))
}

func TestAttributeFilterWhitelistModePresentEvenEmpty(t *testing.T) {
	f := NewAttributeFilter([]string{}, nil)
	assert.False(t, f.IsAllowAll())
	assert.False(t, f.IsAttributePermitted("cn"))
}

func TestAttributeFilterMergeBothWhitelists(t *testing.T) {
	a := WithAllowed("cn", "sn")
	b := WithAllowed("mail")
	merged := a.Merge(b)
	assert.True(t, merged.IsAttributePermitted("cn"))
	assert.True(t, merged.IsAttributePermitted("sn"))
	assert.True(t, merged.IsAttributePermitted("mail"))
	assert.False(t, merged.IsAttributePermitted("telephoneNumber"))
}

func TestAttributeFilterMergeOneWhitelistKeptNotNarrowed(t *testing.T) {
	whitelisted := WithAllowed("cn")
	unrestricted := AllowAllFilter()

	mergedA := whitelisted.Merge(unrestricted)
	assert.True(t, mergedA.IsAttributePermitted("cn"))
	assert.False(t, mergedA.IsAttributePermitted("mail"))

	mergedB := unrestricted.Merge(whitelisted)
	assert.True(t, mergedB.IsAttributePermitted("cn"))
	assert.False(t, mergedB.IsAttributePermitted("mail"))
}

func TestAttributeFilterMergeNeitherWhitelistStaysUnrestricted(t *testing.T) {
	merged := AllowAllFilter().Merge(AllowAllFilter())
	assert.True(t, merged.IsAllowAll())
}

func TestAttributeFilterMergeDenyMonotonicity(t *testing.T) {
	f := WithDenied("userPassword")
	g := AllowAllFilter()
	merged := f.Merge(g)
	assert.True(t, merged.Denies("userPassword"))

	merged2 := g.Merge(f)
	assert.True(t, merged2.Denies("userPassword"))
}

func TestAttributeFilterAddAllowedPromotesToWhitelist(t *testing.T) {
	f := AllowAllFilter()
	f.AddAllowed("cn")
	assert.False(t, f.IsAllowAll())
	assert.True(t, f.IsAttributePermitted("cn"))
	assert.False(t, f.IsAttributePermitted("mail"))

	f.AddAllowed("mail")
	assert.True(t, f.IsAttributePermitted("mail"))
}

func TestAttributeFilterAddDeniedUnconditional(t *testing.T) {
	f := WithAllowed("cn", "mail")
	f.AddDenied("mail")
	assert.True(t, f.IsAttributePermitted("cn"))
	assert.False(t, f.IsAttributePermitted("mail"))
}

func TestObjectAttributeAclMergeReadWriteIndependently(t *testing.T) {
	a := ObjectAttributeAcl{Read: WithAllowed("cn"), Write: DenyAllFilter()}
	b := ObjectAttributeAcl{Read: WithAllowed("mail"), Write: WithAllowed("cn")}
	merged := a.Merge(b)

	assert.True(t, merged.Read.IsAttributePermitted("cn"))
	assert.True(t, merged.Read.IsAttributePermitted("mail"))
	assert.True(t, merged.Write.IsAttributePermitted("cn"))
}

func TestObjectAttributeAclFilterForUnknownActionIsAllowAll(t *testing.T) {
	o := ObjectAttributeAcl{Read: DenyAllFilter(), Write: DenyAllFilter()}
	assert.True(t, o.filterFor("delete").IsAllowAll())
}
