package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeIndexFindsAncestorScopes(t *testing.T) {
	low, high := bitsHalves(1)
	u := Compile("uid=u,dc=x", []AclRow{
		{PermLow: low, PermHigh: high, ScopeDN: "ou=a,dc=x", ScopeType: "subtree"},
		{PermLow: low, PermHigh: high, ScopeDN: "ou=b,dc=x", ScopeType: "subtree"},
	})

	idx := BuildScopeIndex(u)
	found := idx.ScopesUnder(u, "cn=p,ou=a,dc=x")
	assert.Len(t, found, 1)
	assert.Equal(t, "ou=a,dc=x", found[0].DNLower)

	assert.Empty(t, idx.ScopesUnder(u, "cn=p,ou=c,dc=x"))
}

func TestScopeIndexEmptyUserAcl(t *testing.T) {
	u := Compile("uid=u,dc=x", nil)
	idx := BuildScopeIndex(u)
	assert.Empty(t, idx.ScopesUnder(u, "cn=p,dc=x"))
}
