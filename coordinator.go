package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// MinPasswordLength is the policy floor for new passwords.
const MinPasswordLength = 8

// eventPublishTimeout bounds the detached publish task.
const eventPublishTimeout = 5 * time.Second

// RegisterUserMessage carries a registration request.
type RegisterUserMessage struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Password     string `json:"password"`
}

// UpdateUserMessage carries a profile update; nil-equivalent (empty) fields
// are left untouched.
type UpdateUserMessage struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Coordinator orchestrates registration, login, password recovery/reset, and
// role replacement. Each operation runs as an independent unit of work;
// ordering guarantees come only from the persistence layer.
type Coordinator struct {
	repo            RepositoryManager
	tokens          TokenService
	ledger          *ResetTokenLedger
	events          EventPublisher
	hasher          PasswordAuthenticator
	logger          Logger
	tokenExpiration time.Duration
}

// NewCoordinator wires a coordinator from configuration. A missing or
// unusable signing key fails here, at initialization.
func NewCoordinator(repo RepositoryManager, opts Config) (*Coordinator, error) {
	tokens, err := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		repo:            repo,
		tokens:          tokens,
		ledger:          NewResetTokenLedger(repo).WithTTL(opts.GetResetTokenTTL()),
		events:          noopEventPublisher{},
		hasher:          bcryptAuthenticator{},
		logger:          defLogger{},
		tokenExpiration: time.Duration(opts.GetTokenExpiration()) * time.Minute,
	}, nil
}

// WithLogger overrides the coordinator's logger.
func (c *Coordinator) WithLogger(logger Logger) *Coordinator {
	if logger != nil {
		c.logger = logger
		c.ledger.WithLogger(logger)
	}
	return c
}

// WithEventPublisher sets the outbound event bus collaborator.
func (c *Coordinator) WithEventPublisher(publisher EventPublisher) *Coordinator {
	c.events = normalizeEventPublisher(publisher)
	return c
}

// WithPasswordAuthenticator overrides the password hasher.
func (c *Coordinator) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Coordinator {
	if hasher != nil {
		c.hasher = hasher
	}
	return c
}

// WithTokenService overrides the bearer token service.
func (c *Coordinator) WithTokenService(tokens TokenService) *Coordinator {
	if tokens != nil {
		c.tokens = tokens
	}
	return c
}

// WithResetTokenLedger overrides the reset-token ledger.
func (c *Coordinator) WithResetTokenLedger(ledger *ResetTokenLedger) *Coordinator {
	if ledger != nil {
		c.ledger = ledger
	}
	return c
}

// TokenService exposes the bearer token service so the routing layer can
// verify tokens and extract claims.
func (c *Coordinator) TokenService() TokenService {
	return c.tokens
}

// Register creates a credential. Both uniqueness checks run before any
// mutation, so a mid-way failure cannot leave a partial registration. The
// stored password is always the hash, never the plaintext.
func (c *Coordinator) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	taken, err := c.repo.Users().ExistsByUsername(ctx, msg.Username)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check username uniqueness")
	}
	if taken {
		return nil, alreadyExists("username", msg.Username)
	}

	taken, err = c.repo.Users().ExistsByEmail(ctx, msg.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
	}
	if taken {
		return nil, alreadyExists("email", msg.Email)
	}

	hash, err := c.hasher.HashPassword(msg.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Username:     msg.Username,
		Email:        msg.Email,
		MobileNumber: msg.MobileNumber,
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		PasswordHash: hash,
		Roles:        []Role{RoleUser},
	}

	created, err := c.repo.Users().Register(ctx, user)
	if err != nil {
		// the storage-level unique constraint closes the check/insert race
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user").
			WithTextCode(TextCodeAlreadyExists)
	}

	c.publishEvent(ctx, EventTypeRegister, created, map[string]any{
		"registered_at": time.Now().UTC(),
	})

	return created, nil
}

// Login verifies credentials and issues a bearer token scoped to the user's
// current roles. Unknown user and wrong password produce the identical
// ErrInvalidCredentials so responses cannot be used for username enumeration.
func (c *Coordinator) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := c.repo.Users().GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if err := c.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := c.tokens.Generate(user.Username, user.RoleSet())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue bearer token")
	}

	c.publishEvent(ctx, EventTypeLogin, user, map[string]any{
		"login_time": time.Now().UTC(),
	})

	return &AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(c.tokenExpiration.Seconds()),
		User:      user,
	}, nil
}

// RequestPasswordRecovery issues a reset token for the account registered
// under email. An unknown email reports ErrUserNotFound with no token created
// and no event published. The published event carries the token's identifier
// and expiry; the token string itself travels out-of-band.
func (c *Coordinator) RequestPasswordRecovery(ctx context.Context, email string) (*PasswordResetToken, error) {
	user, err := c.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user by email")
	}

	record, err := c.ledger.IssueFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, EventTypePasswordRecovery, user, map[string]any{
		"token_id": record.ID.String(),
		"expiry":   record.ExpiryDate,
	})

	return record, nil
}

// ResetPassword redeems a recovery token and stores a new password hash.
// Policy checks (non-empty token, minimum length) run before the ledger is
// touched; every redemption failure surfaces uniformly as
// ErrInvalidResetToken and leaves the credential unchanged.
func (c *Coordinator) ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	if err := c.ledger.Redeem(ctx, token, userID); err != nil {
		if IsRedemptionFailure(err) {
			clone := ErrInvalidResetToken.Clone()
			if clone == nil {
				return ErrInvalidResetToken
			}
			clone.Source = ErrInvalidResetToken
			return clone.WithMetadata(map[string]any{"cause": err.Error()})
		}
		return err
	}

	user, err := c.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	hash, err := c.hasher.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash new password")
	}

	if err := c.repo.Users().ResetPassword(ctx, user.ID, hash); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store new password")
	}

	c.publishEvent(ctx, EventTypePasswordUpdate, user, map[string]any{
		"update_time": time.Now().UTC(),
	})

	return nil
}

// SetRoles replaces the target credential's role set wholesale. The routing
// layer gates this behind RoleAdmin before it is reached; no event is
// published for role changes.
func (c *Coordinator) SetRoles(ctx context.Context, id uuid.UUID, roles RoleSet) (*User, error) {
	if roles.IsEmpty() {
		return nil, errors.New("role set must not be empty", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	if _, err := c.repo.Users().GetByID(ctx, id.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	user, err := c.repo.Users().UpdateRoles(ctx, id, roles)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update roles")
	}

	return user, nil
}

// UpdateUser applies a profile update, enforcing email uniqueness when the
// email changes, and publishes a user-update event.
func (c *Coordinator) UpdateUser(ctx context.Context, id uuid.UUID, msg UpdateUserMessage) (*User, error) {
	user, err := c.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if msg.Email != "" && msg.Email != user.Email {
		taken, err := c.repo.Users().ExistsByEmail(ctx, msg.Email)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
		}
		if taken {
			return nil, alreadyExists("email", msg.Email)
		}
		user.Email = msg.Email
	}

	if msg.FirstName != "" {
		user.FirstName = msg.FirstName
	}
	if msg.LastName != "" {
		user.LastName = msg.LastName
	}

	updated, err := c.repo.Users().Update(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	c.publishEvent(ctx, EventTypeUserUpdate, updated, map[string]any{
		"update_time": time.Now().UTC(),
	})

	return updated, nil
}

// DeleteUser removes the credential and all of its reset tokens, then
// publishes a user-delete event. Deleting an unknown id is a no-op.
func (c *Coordinator) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := c.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if err := c.repo.ResetTokens().DeleteByUserID(ctx, user.ID); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete reset tokens")
	}

	if err := c.repo.Users().Remove(ctx, user.ID); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	c.publishEvent(ctx, EventTypeUserDelete, user, map[string]any{
		"delete_time": time.Now().UTC(),
	})

	return nil
}

// VerifyBearer validates a bearer token and returns its claims. Purely
// computational; safe under unbounded parallelism.
func (c *Coordinator) VerifyBearer(tokenString string) (*JWTClaims, error) {
	return c.tokens.Validate(tokenString)
}

// publishEvent dispatches a UserEvent on a detached task. The task inherits
// the caller's values but not its cancellation, so an aborted request cannot
// suppress an event for work that already committed. Publish failures are
// logged and never reach the caller.
func (c *Coordinator) publishEvent(ctx context.Context, eventType string, user *User, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}

	event := UserEvent{
		Type:         eventType,
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Timestamp:    time.Now().UTC(),
		Data:         data,
	}

	publisher := normalizeEventPublisher(c.events)
	logger := c.logger

	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
		defer cancel()

		if err := publisher.Publish(pubCtx, event); err != nil {
			logger.Error("failed to publish %s event for user %s: %v", eventType, event.UserID, err)
		}
	}()
}

func alreadyExists(field, value string) error {
	clone := ErrAlreadyExists.Clone()
	if clone == nil {
		return ErrAlreadyExists
	}
	clone.Source = ErrAlreadyExists
	return clone.WithMetadata(map[string]any{field: value})
}
