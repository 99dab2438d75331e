package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// JWTClaims is the bearer token payload: registered claims plus the caller's
// role names at issuance time.
type JWTClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Subject returns the subject claim (the username).
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// RoleSet returns the claims' roles as an immutable snapshot.
func (c *JWTClaims) RoleSet() RoleSet {
	return RoleSetFromNames(c.Roles)
}

// HasRole reports whether the claims carry the given role.
func (c *JWTClaims) HasRole(role Role) bool {
	return c.RoleSet().Has(role)
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

// TokenService issues and verifies signed bearer tokens. Verification is
// purely computational, so it can run with unbounded parallelism on any
// replica.
type TokenService interface {
	Generate(subject string, roles RoleSet) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (*JWTClaims, error)
	SubjectFromToken(tokenString string) (string, error)
	RolesFromToken(tokenString string) ([]string, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration time.Duration
	issuer          string
	logger          Logger
}

// NewTokenService creates a new TokenService instance. A missing signing key
// is fatal here so that it can never become a per-request failure.
func NewTokenService(signingKey []byte, expirationMinutes int, issuer string, logger Logger) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("token service requires a signing key", errors.CategoryInternal)
	}
	if expirationMinutes <= 0 {
		return nil, errors.New("token service requires a positive expiration", errors.CategoryInternal)
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: time.Duration(expirationMinutes) * time.Minute,
		issuer:          issuer,
		logger:          logger,
	}, nil
}

// Generate creates a signed token for subject carrying the given roles. The
// jti claim guarantees no two issued tokens are byte-identical, even within
// the same second.
func (ts *TokenServiceImpl) Generate(subject string, roles RoleSet) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenExpiration)),
		},
		Roles: roles.Names(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning structured claims.
// Issuer mismatches, unparseable structure, bad signatures, and elapsed
// expiry all fail; the typed error distinguishes the cause for logging while
// callers treat every failure as "authentication failed".
func (ts *TokenServiceImpl) Validate(tokenString string) (*JWTClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, normalizeTokenError(err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}

// SubjectFromToken projects the subject out of a verified token. An invalid
// token fails loudly rather than yielding an empty subject.
func (ts *TokenServiceImpl) SubjectFromToken(tokenString string) (string, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return "", unverifiedClaims(err)
	}
	return claims.Subject(), nil
}

// RolesFromToken projects the role names out of a verified token. An invalid
// token fails loudly rather than yielding an empty role list.
func (ts *TokenServiceImpl) RolesFromToken(tokenString string) ([]string, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return nil, unverifiedClaims(err)
	}
	return claims.Roles, nil
}

func normalizeTokenError(err error) error {
	sentinel := ErrTokenMalformed
	if errors.Is(err, jwt.ErrTokenExpired) {
		sentinel = ErrTokenExpired
	} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		sentinel = ErrSignatureMismatch
	}

	clone := sentinel.Clone()
	if clone == nil {
		return sentinel
	}
	clone.Source = sentinel
	return clone.WithMetadata(map[string]any{"cause": err.Error()})
}

func unverifiedClaims(cause error) error {
	clone := ErrUnverifiedClaims.Clone()
	if clone == nil {
		return ErrUnverifiedClaims
	}
	clone.Source = ErrUnverifiedClaims
	return clone.WithMetadata(map[string]any{"cause": cause.Error()})
}
