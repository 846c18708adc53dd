package models

import "strings"

// Role is the capability a caller holds. It is resolved outside this service
// (the identity provider mints it into the access token).
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleRider    Role = "rider"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleRider:
		return true
	}
	return false
}

// Caller is the authenticated identity every service operation receives.
type Caller struct {
	Email string
	Role  Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
func (c Caller) IsRider() bool { return c.Role == RoleRider }

// Is reports whether email belongs to the caller.
func (c Caller) Is(email string) bool { return SameEmail(c.Email, email) }

// NormalizeEmail returns the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}

// User is the subset of the user record this service reads and promotes.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}
