package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured JWT claims with permission checking
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Email() string
	Name() string
	TokenID() string
	CanRead(resource string) bool
	CanEdit(resource string) bool
	CanCreate(resource string) bool
	CanDelete(resource string) bool
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string            `json:"uid,omitempty"`
	UserRole  string            `json:"role,omitempty"`
	UserEmail string            `json:"email,omitempty"`
	UserName  string            `json:"name,omitempty"`
	Resources map[string]string `json:"res,omitempty"` // resource -> role
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

func (c *JWTClaims) Email() string {
	return c.UserEmail
}

func (c *JWTClaims) Name() string {
	return c.UserName
}

// TokenID returns the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

func (c *JWTClaims) roleFor(resource string) UserRole {
	if resourceRole, exists := c.Resources[resource]; exists {
		return UserRole(resourceRole)
	}
	return UserRole(c.UserRole)
}

// CanRead checks if the user can read a specific resource
func (c *JWTClaims) CanRead(resource string) bool {
	return c.roleFor(resource).CanRead()
}

// CanEdit checks if the user can edit a specific resource
func (c *JWTClaims) CanEdit(resource string) bool {
	return c.roleFor(resource).CanEdit()
}

// CanCreate checks if the user can create a specific resource
func (c *JWTClaims) CanCreate(resource string) bool {
	return c.roleFor(resource).CanCreate()
}

// CanDelete checks if the user can delete a specific resource
func (c *JWTClaims) CanDelete(resource string) bool {
	return c.roleFor(resource).CanDelete()
}

// HasRole checks if the user has a specific role, global or for any resource
func (c *JWTClaims) HasRole(role string) bool {
	if c.UserRole == role {
		return true
	}
	for _, resourceRole := range c.Resources {
		if resourceRole == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.UserRole).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
