package models

import "time"

type Role string

const (
	RoleUser   Role = "USER"
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole returns the canonical role for s, or false when s names no role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAuthor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type RoleSet []Role

func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

func (rs RoleSet) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings keeps known roles only and drops duplicates.
func RolesFromStrings(values []string) RoleSet {
	set := make(RoleSet, 0, len(values))
	for _, v := range values {
		if role, ok := ParseRole(v); ok && !set.Has(role) {
			set = append(set, role)
		}
	}
	return set
}

// CanPublish is the single capability predicate for post creation. Server
// authorization and client display logic must share this decision.
func CanPublish(roles RoleSet) bool {
	return roles.Has(RoleAuthor) || roles.Has(RoleAdmin)
}

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the per-request principal resolved from a verified access
// token. It is threaded explicitly through handlers, never read from
// ambient globals.
type Identity struct {
	UserID string
	Roles  RoleSet
}
