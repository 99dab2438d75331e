package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthScheme is the expected bearer scheme in the Authorization header.
const AuthScheme = "Bearer"

// ClaimsContextKey is the Locals key under which verified claims are stored
// for downstream handlers.
const ClaimsContextKey = "auth:claims"

// TokenFromHeader extracts the bearer token from the Authorization header.
func TokenFromHeader(ctx router.Context) (string, error) {
	raw := ctx.GetString(router.HeaderAuthorization, "")
	scheme := len(AuthScheme)
	if len(raw) > scheme+1 && strings.EqualFold(raw[:scheme], AuthScheme) {
		return strings.TrimSpace(raw[scheme:]), nil
	}
	return "", ErrTokenMalformed
}

// RequireAuth returns middleware that verifies the bearer token on every
// request and stores the claims in Locals for handlers behind it. Requests
// without a valid token are rejected with 401.
func RequireAuth(tokens TokenService) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token, err := TokenFromHeader(ctx)
			if err != nil {
				return unauthorized(ctx, err)
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				return unauthorized(ctx, err)
			}

			ctx.Locals(ClaimsContextKey, claims)
			return ctx.Next()
		}
	}
}

// RequireRole returns middleware that gates a route behind a role. It must
// run after RequireAuth; a request that never passed token verification is
// rejected as unauthorized, not forbidden.
func RequireRole(required Role) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := ctx.Locals(ClaimsContextKey).(*JWTClaims)
			if !ok || claims == nil {
				return unauthorized(ctx, ErrUnverifiedClaims)
			}

			if !Authorize(claims.RoleSet(), required) {
				return ctx.JSON(router.StatusForbidden, map[string]string{
					"error": ErrForbidden.Message,
					"code":  string(ErrForbidden.TextCode),
				})
			}

			return ctx.Next()
		}
	}
}

// ClaimsFromRouteContext retrieves verified claims stored by RequireAuth.
func ClaimsFromRouteContext(ctx router.Context) (*JWTClaims, bool) {
	claims, ok := ctx.Locals(ClaimsContextKey).(*JWTClaims)
	return claims, ok && claims != nil
}

func unauthorized(ctx router.Context, err error) error {
	message := "invalid or missing authentication token"
	code := TextCodeUnauthorized

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		code = string(richErr.TextCode)
	}

	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": message,
		"code":  code,
	})
}
