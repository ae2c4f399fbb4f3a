package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of dashboard roles. Every role-dependent branch
// switches exhaustively over these six values so adding a role is a
// compile-visible change.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleWarehouse  Role = "warehouse"
	RoleDealer     Role = "dealer"
	RoleAgent      Role = "agent"
	RoleStore      Role = "store"
)

// AllRoles lists every role, in privilege order.
var AllRoles = []Role{
	RoleSuperadmin,
	RoleAdmin,
	RoleWarehouse,
	RoleDealer,
	RoleAgent,
	RoleStore,
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleWarehouse, RoleDealer, RoleAgent, RoleStore:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// LandingRoute returns the fixed landing path for a role. One route per
// role; the router redirects here whenever an authenticated user lands
// outside their own prefix.
func (r Role) LandingRoute() string {
	switch r {
	case RoleSuperadmin:
		return "/superadmin"
	case RoleAdmin:
		return "/admin"
	case RoleWarehouse:
		return "/warehouse"
	case RoleDealer:
		return "/dealer"
	case RoleAgent:
		return "/agent"
	case RoleStore:
		return "/store"
	}
	return "/login"
}

// OwnsPath reports whether path falls under this role's route prefix.
func (r Role) OwnsPath(path string) bool {
	prefix := r.LandingRoute()
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Status is the closed set of account/record statuses.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusInactive, StatusPending:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}
