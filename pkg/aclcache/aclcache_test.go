package aclcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heracles-ldap/aclcore/pkg/acl"
)

func TestCacheSetGetRoundTrip(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	u := acl.Compile("uid=einstein,ou=users,dc=x", nil)
	require.NoError(t, c.Set(u))

	got := c.Get("UID=Einstein,OU=Users,DC=X")
	require.NotNil(t, got)
	assert.Equal(t, u.UserDN, got.UserDN)
}

func TestCacheGetMissReturnsNil(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, c.Get("uid=nobody,dc=x"))
}

func TestCacheInvalidate(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)

	u := acl.Compile("uid=einstein,ou=users,dc=x", nil)
	require.NoError(t, c.Set(u))
	c.Invalidate("uid=einstein,ou=users,dc=x")
	assert.Nil(t, c.Get("uid=einstein,ou=users,dc=x"))
}

func TestCacheConfigDefaults(t *testing.T) {
	c, err := New(map[string]interface{}{"size": 5})
	require.NoError(t, err)
	assert.Equal(t, 5, c.config.Size)
	assert.Equal(t, 300, c.config.ExpirationSeconds)
}
