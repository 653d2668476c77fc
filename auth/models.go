package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	LoginAttempts  int        `bun:"login_attempts,notnull,default:0" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ToIdentity returns the public identity of the user
func (u *User) ToIdentity() Identity {
	if u == nil {
		return nil
	}
	return authIdentity{
		id:    u.ID.String(),
		name:  u.Name,
		email: u.Email,
		role:  string(u.Role),
	}
}

// UsernameFromEmail returns the explicit username or the
// local part of the email when empty
func UsernameFromEmail(username, email string) string {
	if username != "" {
		return username
	}

	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}

	return email
}

// IdentityView is the JSON representation of an identity returned
// to API clients
func IdentityView(identity Identity) map[string]any {
	if identity == nil {
		return nil
	}
	return map[string]any{
		"id":    identity.ID(),
		"name":  identity.Name(),
		"email": identity.Email(),
		"role":  identity.Role(),
	}
}
