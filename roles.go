package auth

import "sort"

// Role is a closed-set authorization label attached to a credential.
type Role string

const (
	// RoleUser is the default role attached at registration.
	RoleUser Role = "USER"
	// RoleAdmin grants administrative operations such as role replacement.
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// AllRoles returns all predefined roles
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a Role
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	return role, role.IsValid()
}

// RoleSet is an immutable snapshot of a credential's roles taken for one
// operation. Mutating operations return a new snapshot; shared state is never
// modified in place.
type RoleSet struct {
	roles []Role
}

// NewRoleSet builds a set from the given roles, dropping duplicates and
// unknown names.
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.IsValid() {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return RoleSet{roles: out}
}

// RoleSetFromNames builds a set from role names, e.g. claims extracted from a
// verified bearer token.
func RoleSetFromNames(names []string) RoleSet {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			roles = append(roles, r)
		}
	}
	return NewRoleSet(roles...)
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s.roles {
		if r == role {
			return true
		}
	}
	return false
}

// With returns a new snapshot that also contains role.
func (s RoleSet) With(role Role) RoleSet {
	return NewRoleSet(append(s.Roles(), role)...)
}

// Roles returns a copy of the set's members in sorted order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, len(s.roles))
	copy(out, s.roles)
	return out
}

// Names returns the role names in sorted order, the shape stored in token
// claims.
func (s RoleSet) Names() []string {
	out := make([]string, len(s.roles))
	for i, r := range s.roles {
		out[i] = string(r)
	}
	return out
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int { return len(s.roles) }

// IsEmpty reports whether the set has no roles.
func (s RoleSet) IsEmpty() bool { return len(s.roles) == 0 }

// Authorize is the authorization gate: allow iff required is a member of the
// caller's role set. Pure, no state, no side effects.
func Authorize(callerRoles RoleSet, required Role) bool {
	return callerRoles.Has(required)
}
