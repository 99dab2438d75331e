package auth

import "context"

type contextKey struct{ name string }

var (
	userContextKey   = contextKey{"auth:user"}
	claimsContextKey = contextKey{"auth:claims"}
)

// WithContext returns a context carrying the authenticated user.
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext retrieves the authenticated user, if any.
func FromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

// WithClaimsContext returns a context carrying verified token claims.
func WithClaimsContext(ctx context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims retrieves verified token claims, if any.
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*JWTClaims)
	return claims, ok
}
