package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ResetTokenTTL is the default lifetime of a recovery token.
const ResetTokenTTL = time.Hour

// resetTokenBytes gives 256 bits of entropy per token.
const resetTokenBytes = 32

// ResetTokenLedger manages one-time password-reset tokens: creation,
// single-use redemption, expiry, and invalidation.
type ResetTokenLedger struct {
	repo   RepositoryManager
	logger Logger
	ttl    time.Duration
}

// NewResetTokenLedger creates a ledger over the given repositories.
func NewResetTokenLedger(repo RepositoryManager) *ResetTokenLedger {
	return &ResetTokenLedger{
		repo:   repo,
		logger: defLogger{},
		ttl:    ResetTokenTTL,
	}
}

// WithLogger overrides the logger used by the ledger.
func (l *ResetTokenLedger) WithLogger(logger Logger) *ResetTokenLedger {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithTTL overrides the token lifetime. Zero or negative keeps the current
// value.
func (l *ResetTokenLedger) WithTTL(ttl time.Duration) *ResetTokenLedger {
	if ttl > 0 {
		l.ttl = ttl
	}
	return l
}

// IssueFor invalidates every unexpired token owned by userID, then persists
// and returns a fresh one expiring after the ledger's TTL.
//
// The delete-then-create sequence is not atomic: two concurrent recovery
// requests for the same user can each observe no live token and both insert
// one. The single-live-token invariant is eventual, restored by the next
// issuance or redemption; storage that supports a combined
// delete-and-insert transaction may close the window, but nothing here
// requires it.
func (l *ResetTokenLedger) IssueFor(ctx context.Context, userID uuid.UUID) (*PasswordResetToken, error) {
	now := time.Now()

	if err := l.repo.ResetTokens().DeleteActiveByUserID(ctx, userID, now); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to invalidate previous reset tokens")
	}

	token, err := newResetTokenString()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate reset token")
	}

	record := &PasswordResetToken{
		ID:         uuid.New(),
		Token:      token,
		UserID:     userID,
		ExpiryDate: now.Add(l.ttl),
	}

	created, err := l.repo.ResetTokens().Create(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist reset token")
	}

	return created, nil
}

// Redeem consumes the token for expectedUserID. Outcomes:
//   - nil: owner matched, token deleted, caller may change the password
//   - ErrResetTokenNotFound: no such token
//   - ErrResetTokenExpired: token was past expiry and has been deleted
//   - ErrResetTokenMismatch: token belongs to another user; it is kept so a
//     forged user id cannot purge the real owner's token
func (l *ResetTokenLedger) Redeem(ctx context.Context, token string, expectedUserID uuid.UUID) error {
	record, err := l.repo.ResetTokens().GetByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrResetTokenNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up reset token")
	}

	if record.IsExpired() {
		if err := l.repo.ResetTokens().DeleteToken(ctx, token); err != nil {
			l.logger.Warn("failed to delete expired reset token: %v", err)
		}
		return ErrResetTokenExpired
	}

	if record.UserID != expectedUserID {
		return ErrResetTokenMismatch
	}

	if err := l.repo.ResetTokens().DeleteToken(ctx, token); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to consume reset token")
	}

	return nil
}

// PurgeExpired removes every token past its expiry. Intended for a host-run
// periodic job; redemption does not depend on it.
func (l *ResetTokenLedger) PurgeExpired(ctx context.Context) (int64, error) {
	return l.repo.ResetTokens().DeleteExpiredBefore(ctx, time.Now())
}

func newResetTokenString() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
