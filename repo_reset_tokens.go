package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetTokens is the reset-token persistence collaborator.
type ResetTokens interface {
	repository.Repository[*PasswordResetToken]

	GetByToken(ctx context.Context, token string) (*PasswordResetToken, error)

	DeleteToken(ctx context.Context, token string) error
	DeleteTokenTx(ctx context.Context, tx bun.IDB, token string) error

	// DeleteActiveByUserID removes every token for user whose expiry is still
	// in the future relative to now.
	DeleteActiveByUserID(ctx context.Context, userID uuid.UUID, now time.Time) error
	DeleteActiveByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, now time.Time) error

	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error

	// DeleteExpiredBefore purges tokens whose expiry precedes cutoff; hosts
	// run it from a periodic job.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type resetTokens struct {
	repository.Repository[*PasswordResetToken]
	db *bun.DB
}

var (
	_ ResetTokens                                = (*resetTokens)(nil)
	_ repository.Repository[*PasswordResetToken] = (*resetTokens)(nil)
)

func NewResetTokensRepository(db *bun.DB) ResetTokens {
	repo := repository.NewRepository[*PasswordResetToken](db, repository.ModelHandlers[*PasswordResetToken]{
		NewRecord: func() *PasswordResetToken { return &PasswordResetToken{} },
		GetID: func(t *PasswordResetToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *PasswordResetToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &resetTokens{
		Repository: repo,
		db:         db,
	}
}

func (r *resetTokens) GetByToken(ctx context.Context, token string) (*PasswordResetToken, error) {
	record := &PasswordResetToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *resetTokens) DeleteToken(ctx context.Context, token string) error {
	return r.DeleteTokenTx(ctx, r.db, token)
}

func (r *resetTokens) DeleteTokenTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := tx.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("?TableAlias.token = ?", token).
		Exec(ctx)
	return err
}

func (r *resetTokens) DeleteActiveByUserID(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.DeleteActiveByUserIDTx(ctx, r.db, userID, now)
}

func (r *resetTokens) DeleteActiveByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, now time.Time) error {
	_, err := tx.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.expiry_date > ?", now).
		Exec(ctx)
	return err
}

func (r *resetTokens) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.DeleteByUserIDTx(ctx, r.db, userID)
}

func (r *resetTokens) DeleteByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *resetTokens) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("?TableAlias.expiry_date < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
