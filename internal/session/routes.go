package session

import "strings"

// RouteAction is the router's decision for a navigation attempt.
type RouteAction int

const (
	RouteAllow RouteAction = iota
	RouteDefer
	RouteRedirect
)

// RouteDecision carries the redirect target and, for login redirects, the
// originally requested destination so it can be resumed after login.
type RouteDecision struct {
	Action   RouteAction
	Target   string
	Resume   string
}

const LoginRoute = "/login"

// publicRoutes need no authentication.
var publicRoutes = map[string]bool{
	LoginRoute: true,
}

// ResolveRoute computes the role-gated routing decision as a pure function
// of the current user and the requested path.
//
// While loading, routing decisions are deferred. Unauthenticated users are
// sent to the login entry point with the original destination remembered.
// Authenticated users landing outside their role prefix are redirected to
// their role's fixed landing route - never to another role's.
func ResolveRoute(cu CurrentUser, target string) RouteDecision {
	if cu.IsLoading {
		return RouteDecision{Action: RouteDefer}
	}

	target = normalizePath(target)

	if cu.Profile == nil {
		if publicRoutes[target] {
			return RouteDecision{Action: RouteAllow}
		}
		return RouteDecision{Action: RouteRedirect, Target: LoginRoute, Resume: target}
	}

	role := cu.Profile.Role
	if role.OwnsPath(target) {
		return RouteDecision{Action: RouteAllow}
	}
	return RouteDecision{Action: RouteRedirect, Target: role.LandingRoute()}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
