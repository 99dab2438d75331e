// Package auth implements the authentication and credential-lifecycle
// subsystem for a multi-tenant user directory: signed bearer tokens, password
// hashing, one-time password-reset tokens, and role checks.
//
// Token issuance and verification:
//   - TokenService signs HS256 JWTs carrying sub, iss, iat, exp, jti, and the
//     caller's role list. Verification is purely computational, so any replica
//     can validate tokens without a shared store. Failures surface as typed
//     errors (ErrTokenExpired, ErrTokenMalformed, ErrSignatureMismatch) that
//     all read as "authentication failed" to callers.
//
// Reset tokens:
//   - ResetTokenLedger manages one-time recovery tokens. Issuing a token for a
//     user first removes their unexpired tokens, so at most one live token per
//     user holds eventually. Redemption is single-use: tokens are deleted on
//     success and on expiry, but kept on an owner mismatch so a forged user id
//     cannot purge someone else's token.
//
// Coordination:
//   - Coordinator orchestrates registration, login, password recovery and
//     reset, and role replacement against a RepositoryManager, publishing a
//     UserEvent after each state-changing action. Event delivery is
//     best-effort: publish failures are logged and never fail the primary
//     operation.
package auth
