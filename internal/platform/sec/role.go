// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

package sec

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted access, including the admin dashboard
	RoleAdmin Role = "admin"

	// Default role for standard registered users
	RoleUser Role = "user"
)

// Valid reports whether the role is one of the known enumerated values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether the role grants admin-dashboard access.
//
// The check is deliberately exact: authorization is a two-level gate, not a
// hierarchy, so there is no numeric level comparison here.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
