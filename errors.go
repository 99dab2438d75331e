package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeAlreadyExists      = "user_already_exists"
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeUserNotFound       = "user_not_found"
	TextCodeInvalidResetToken  = "invalid_reset_token"
	TextCodeWeakPassword       = "weak_password"
	TextCodeForbidden          = "forbidden"
	TextCodeTokenExpired       = "token_expired"
	TextCodeTokenMalformed     = "token_malformed"
	TextCodeSignatureMismatch  = "token_signature_mismatch"
	TextCodeUnverifiedClaims   = "unverified_claims"
	TextCodeUnauthorized       = "unauthorized"
)

// ErrAlreadyExists is returned when a registration or update collides with an
// existing username or email.
var ErrAlreadyExists = errors.New("username or email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyExists).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials is the uniform login failure. Unknown user, wrong
// password, and disabled account are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is returned when a user cannot be resolved by id or email.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidResetToken covers every reset-token redemption failure (missing,
// expired, or owner mismatch) as seen by callers.
var ErrInvalidResetToken = errors.New("invalid or expired reset token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(errors.CodeUnauthorized)

// ErrWeakPassword is returned when a new password does not meet the minimum
// length policy.
var ErrWeakPassword = errors.New("password must be at least 8 characters", errors.CategoryValidation).
	WithTextCode(TextCodeWeakPassword).
	WithCode(errors.CodeBadRequest)

// ErrForbidden is returned when the caller's role set does not include the
// role an operation requires.
var ErrForbidden = errors.New("insufficient role", errors.CategoryAuth).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned when a bearer token is past its exp claim.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a bearer token cannot be parsed or its
// claims fail validation.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrSignatureMismatch is returned when a bearer token's signature does not
// verify against the configured key.
var ErrSignatureMismatch = errors.New("token signature mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeSignatureMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrUnverifiedClaims is returned by claim projections (subject, roles) when
// the token did not verify. Failing loudly here prevents authorization
// decisions over empty data from a forged token.
var ErrUnverifiedClaims = errors.New("claims requested from unverified token", errors.CategoryAuth).
	WithTextCode(TextCodeUnverifiedClaims).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the uniform verification failure for
// ComparePasswordAndHash, covering both wrong passwords and malformed stored
// hashes.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// Ledger-level redemption outcomes. The Coordinator collapses all three into
// ErrInvalidResetToken; they stay distinct here so the ledger's behavior
// (delete on expiry, keep on mismatch) can be tested and logged precisely.
var (
	ErrResetTokenNotFound = errors.New("reset token not found", errors.CategoryNotFound).
				WithTextCode(TextCodeInvalidResetToken).
				WithCode(errors.CodeNotFound)

	ErrResetTokenExpired = errors.New("reset token expired", errors.CategoryAuth).
				WithTextCode(TextCodeInvalidResetToken).
				WithCode(errors.CodeUnauthorized)

	ErrResetTokenMismatch = errors.New("reset token does not belong to user", errors.CategoryAuth).
				WithTextCode(TextCodeInvalidResetToken).
				WithCode(errors.CodeUnauthorized)
)

// IsAuthFailure reports whether err is one of the bearer verification
// failures. Callers should treat all of them as a single "authentication
// failed" outcome.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrUnverifiedClaims)
}

// IsRedemptionFailure reports whether err is one of the ledger redemption
// outcomes that callers surface as ErrInvalidResetToken.
func IsRedemptionFailure(err error) bool {
	return errors.Is(err, ErrResetTokenNotFound) ||
		errors.Is(err, ErrResetTokenExpired) ||
		errors.Is(err, ErrResetTokenMismatch)
}
