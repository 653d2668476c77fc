package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims stored by the JWT middleware
func GetRouterClaims(c router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user"
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// Permission names understood by Can
const (
	PermissionRead   = "read"
	PermissionEdit   = "edit"
	PermissionCreate = "create"
	PermissionDelete = "delete"
)

// Can checks a permission on a resource using the claims in the context
func Can(ctx context.Context, resource, permission string) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return can(claims, resource, permission)
}

// CanFromRouter checks a permission using the claims stored on the request
func CanFromRouter(c router.Context, key, resource, permission string) bool {
	claims, ok := GetRouterClaims(c, key)
	if !ok {
		return false
	}
	return can(claims, resource, permission)
}

func can(claims AuthClaims, resource, permission string) bool {
	switch permission {
	case PermissionRead:
		return claims.CanRead(resource)
	case PermissionEdit:
		return claims.CanEdit(resource)
	case PermissionCreate:
		return claims.CanCreate(resource)
	case PermissionDelete:
		return claims.CanDelete(resource)
	default:
		return false
	}
}
