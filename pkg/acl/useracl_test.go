package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAclIsSelfCaseInsensitive(t *testing.T) {
	u := Compile("uid=Einstein,ou=users,dc=x", nil)
	assert.True(t, u.IsSelf("uid=einstein,ou=users,dc=x"))
	assert.False(t, u.IsSelf("uid=bohr,ou=users,dc=x"))
}

func TestUserAclFilterAttributesFailsClosedWhenObjectCheckFails(t *testing.T) {
	u := Compile("uid=u,dc=x", []AclRow{
		{
			PermLow: 0, PermHigh: 0,
			AttrRules: []AttrRule{
				{ObjectType: "user", Action: "read", RuleType: "allow", Attributes: []string{"cn"}},
			},
		},
	})

	out := u.FilterAttributes("uid=v,dc=x", MustFromBit(0), "user", "read", []string{"cn", "mail"})
	assert.Empty(t, out, "no permission granted so the object-level gate fails and nothing is returned")
}

func TestUserAclFilterAttributesReturnsPermittedSubsequence(t *testing.T) {
	low, high := bitsHalves(0)
	u := Compile("uid=u,dc=x", []AclRow{
		{
			PermLow: low, PermHigh: high,
			AttrRules: []AttrRule{
				{ObjectType: "user", Action: "read", RuleType: "allow", Attributes: []string{"cn", "mail"}},
			},
		},
	})

	out := u.FilterAttributes("uid=v,dc=x", MustFromBit(0), "user", "read", []string{"cn", "mail", "userPassword"})
	assert.Equal(t, []string{"cn", "mail"}, out)
}

func TestUserAclEffectivePermissionsEmptyCompile(t *testing.T) {
	u := Compile("uid=u,dc=x", nil)
	assert.True(t, u.EffectivePermissions("cn=anyone,dc=x").IsEmpty())
}

func TestUserAclCheckAttributeObjectTypeWithoutRulesIsAllowAll(t *testing.T) {
	low, high := bitsHalves(0)
	u := Compile("uid=u,dc=x", []AclRow{{PermLow: low, PermHigh: high}})
	assert.True(t, u.CheckAttribute("uid=v,dc=x", MustFromBit(0), "group", "write", "member"))
}
