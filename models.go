package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted credential record. PasswordHash never leaves the
// package through JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	MobileNumber  string     `bun:"mobile_number,notnull,unique" json:"mobile_number,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []Role     `bun:"roles,notnull" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RoleSet returns an immutable snapshot of the user's roles for the current
// operation.
func (u *User) RoleSet() RoleSet {
	return NewRoleSet(u.Roles...)
}

// HasRole reports whether the user currently holds role.
func (u *User) HasRole(role Role) bool {
	return u.RoleSet().Has(role)
}

// AddRole appends role if absent. A persisted credential's role set is never
// empty; registration relies on this to attach the USER default.
func (u *User) AddRole(role Role) *User {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return u
}

// PasswordResetToken is a one-time recovery token. The token string is the
// lookup key; the row id only exists for event payloads, which must not carry
// the secret itself.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:prt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	ExpiryDate    time.Time  `bun:"expiry_date,notnull" json:"expiry_date,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token is at or past its expiry.
func (t *PasswordResetToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the token is at or past its expiry relative to
// the given instant.
func (t *PasswordResetToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiryDate)
}

// AuthResponse is the login result handed back to the routing layer.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	User      *User  `json:"user,omitempty"`
}
