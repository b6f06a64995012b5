package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopedEntrySubtreeBoundary(t *testing.T) {
	e := ScopedEntry{DNLower: "ou=a,dc=x", Subtree: true}

	assert.True(t, e.matches("ou=a,dc=x", false))
	assert.True(t, e.matches("cn=p,ou=a,dc=x", false))
	assert.False(t, e.matches("ou=ab,dc=x", false))
	assert.False(t, e.matches("cn=p,ou=ab,dc=x", false))
}

func TestScopedEntryBaseScopeExactOnly(t *testing.T) {
	e := ScopedEntry{DNLower: "ou=a,dc=x", Subtree: false}

	assert.True(t, e.matches("ou=a,dc=x", false))
	assert.False(t, e.matches("cn=p,ou=a,dc=x", false))
}

func TestScopedEntrySelfOnlyRequiresSelf(t *testing.T) {
	e := ScopedEntry{DNLower: "", Subtree: true, SelfOnly: true}

	assert.True(t, e.matches("uid=u,ou=users,dc=x", true))
	assert.False(t, e.matches("uid=w,ou=users,dc=x", false))
}

func TestScopedEntrySelfOnlyWithConcreteScope(t *testing.T) {
	e := ScopedEntry{DNLower: "ou=a,dc=x", Subtree: true, SelfOnly: true}

	assert.False(t, e.matches("cn=p,ou=a,dc=x", false), "not self, must not match even though scope matches")
	assert.True(t, e.matches("cn=p,ou=a,dc=x", true))
}

func TestScopedEntryEmptySubtreeDNMatchesEverything(t *testing.T) {
	e := ScopedEntry{DNLower: "", Subtree: true}
	assert.True(t, e.matches("anything,at,all", false))
	assert.True(t, e.matches("", false))
}
