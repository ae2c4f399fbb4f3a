package session_test

import (
	"testing"

	"cddiller-backend/internal/domain"
	"cddiller-backend/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoute(t *testing.T) {
	loading := session.CurrentUser{IsLoading: true}
	anonymous := session.CurrentUser{}
	asRole := func(r domain.Role) session.CurrentUser {
		return session.CurrentUser{Profile: &domain.Profile{ID: "uid-1", Role: r, Status: domain.StatusActive}}
	}

	t.Run("defers while loading", func(t *testing.T) {
		d := session.ResolveRoute(loading, "/admin/orders")
		assert.Equal(t, session.RouteDefer, d.Action)
	})

	t.Run("unauthenticated may reach public routes", func(t *testing.T) {
		d := session.ResolveRoute(anonymous, "/login")
		assert.Equal(t, session.RouteAllow, d.Action)
	})

	t.Run("unauthenticated is redirected to login with resume", func(t *testing.T) {
		d := session.ResolveRoute(anonymous, "/dealer/orders/42")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, session.LoginRoute, d.Target)
		assert.Equal(t, "/dealer/orders/42", d.Resume)
	})

	t.Run("role reaches its own prefix", func(t *testing.T) {
		d := session.ResolveRoute(asRole(domain.RoleWarehouse), "/warehouse/products")
		assert.Equal(t, session.RouteAllow, d.Action)

		d = session.ResolveRoute(asRole(domain.RoleWarehouse), "/warehouse")
		assert.Equal(t, session.RouteAllow, d.Action)
	})

	t.Run("foreign prefix redirects to own landing, never another role's", func(t *testing.T) {
		d := session.ResolveRoute(asRole(domain.RoleAgent), "/admin/users")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, "/agent", d.Target)
		assert.Empty(t, d.Resume)
	})

	t.Run("every role lands on its own route from a foreign path", func(t *testing.T) {
		for _, role := range domain.AllRoles {
			for _, other := range domain.AllRoles {
				if other == role {
					continue
				}
				target := other.LandingRoute() + "/settings"
				d := session.ResolveRoute(asRole(role), target)
				assert.Equal(t, session.RouteRedirect, d.Action, "role %s visiting %s", role, target)
				assert.Equal(t, role.LandingRoute(), d.Target, "role %s visiting %s", role, target)
			}
		}
	})

	t.Run("authenticated user on login is sent home", func(t *testing.T) {
		d := session.ResolveRoute(asRole(domain.RoleStore), "/login")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, "/store", d.Target)
	})

	t.Run("paths are normalized before matching", func(t *testing.T) {
		d := session.ResolveRoute(asRole(domain.RoleDealer), "/dealer/")
		assert.Equal(t, session.RouteAllow, d.Action)

		d = session.ResolveRoute(anonymous, "")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, "/", d.Resume)
	})

	t.Run("prefix match does not bleed across sibling names", func(t *testing.T) {
		// "/storefront" is not under the store role's "/store" prefix.
		d := session.ResolveRoute(asRole(domain.RoleStore), "/storefront")
		assert.Equal(t, session.RouteRedirect, d.Action)
		assert.Equal(t, "/store", d.Target)
	})
}
