package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"pending", "teacher", "paraeducator", "admin", "super_admin", "superuser"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "principal", "Teacher", "SUPERUSER", "admin "} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestAssignableRoles(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleTeacher.Assignable())
	assert.True(t, RoleParaeducator.Assignable())
	assert.True(t, RoleAdmin.Assignable())
	assert.True(t, RoleSuperAdmin.Assignable())

	// Neither the waiting state nor the bootstrap bypass can be granted
	// through the approval flow.
	assert.False(t, RolePending.Assignable())
	assert.False(t, RoleSuperuser.Assignable())

	for _, role := range AssignableRoles() {
		assert.True(t, role.Assignable())
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	first := "Dana"
	desired := "Ms. D"
	empty := ""

	u := &User{Username: "dana"}
	assert.Equal(t, "dana", u.DisplayName())

	u.FirstName = &first
	assert.Equal(t, "Dana", u.DisplayName())

	u.DesiredName = &desired
	assert.Equal(t, "Ms. D", u.DisplayName())

	u.DesiredName = &empty
	assert.Equal(t, "Dana", u.DisplayName(), "blank classroom name falls through")
}
