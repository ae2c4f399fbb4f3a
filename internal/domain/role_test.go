package domain_test

import (
	"testing"

	"cddiller-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range domain.AllRoles {
		parsed, err := domain.ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	parsed, err := domain.ParseRole("  Admin ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, parsed)

	_, err = domain.ParseRole("wizard")
	assert.Error(t, err)
	_, err = domain.ParseRole("")
	assert.Error(t, err)
}

func TestLandingRoute(t *testing.T) {
	want := map[domain.Role]string{
		domain.RoleSuperadmin: "/superadmin",
		domain.RoleAdmin:      "/admin",
		domain.RoleWarehouse:  "/warehouse",
		domain.RoleDealer:     "/dealer",
		domain.RoleAgent:      "/agent",
		domain.RoleStore:      "/store",
	}
	for role, route := range want {
		assert.Equal(t, route, role.LandingRoute(), "role %s", role)
	}
	assert.Equal(t, "/login", domain.Role("wizard").LandingRoute())
}

func TestOwnsPath(t *testing.T) {
	assert.True(t, domain.RoleAdmin.OwnsPath("/admin"))
	assert.True(t, domain.RoleAdmin.OwnsPath("/admin/users/42"))
	assert.False(t, domain.RoleAdmin.OwnsPath("/administrator"))
	assert.False(t, domain.RoleAdmin.OwnsPath("/dealer"))
	assert.False(t, domain.RoleStore.OwnsPath("/storefront"))
	assert.True(t, domain.RoleSuperadmin.OwnsPath("/superadmin/settings"))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []domain.Status{domain.StatusActive, domain.StatusInactive, domain.StatusPending} {
		parsed, err := domain.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		assert.True(t, s.Valid())
	}

	_, err := domain.ParseStatus("banned")
	assert.Error(t, err)
	assert.False(t, domain.Status("banned").Valid())
}
