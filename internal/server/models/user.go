// Package models holds the persistent domain types of the accounts service.
package models

import (
	"strings"
	"time"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalises s into a Role. The second result is false for
// unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// User is an account record. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate carries the optional fields an administrator may change.
// Nil fields are left untouched.
type UserUpdate struct {
	UserName *string
	Password *string
	Role     *Role
}
