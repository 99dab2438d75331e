package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController exposes the coordinator over HTTP as a JSON API.
type AuthController struct {
	auth   *Coordinator
	Logger Logger
}

// NewAuthController creates the HTTP controller.
func NewAuthController(coordinator *Coordinator) *AuthController {
	if coordinator == nil {
		panic("Missing Coordinator in auth controller...")
	}
	return &AuthController{
		auth:   coordinator,
		Logger: defLogger{},
	}
}

// RegisterRoutes attaches the controller's routes. Role replacement and user
// management sit behind bearer verification plus an admin gate.
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	requireAuth := RequireAuth(a.auth.TokenService())
	requireAdmin := RequireRole(RoleAdmin)

	group.Post("/auth/register", a.Register)
	group.Post("/auth/login", a.Login)
	group.Post("/auth/password-recovery", a.PasswordRecovery)
	group.Post("/auth/password-reset", a.PasswordReset)
	group.Put("/auth/users/:id/roles", a.SetRoles, requireAuth, requireAdmin)
	group.Put("/auth/users/:id", a.UpdateUser, requireAuth, requireAdmin)
	group.Delete("/auth/users/:id", a.DeleteUser, requireAuth, requireAdmin)
	group.Get("/health", a.Health)
}

type RegisterPayload struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Password     string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.MobileNumber, validation.Length(7, 15)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
	)
}

// Register creates a credential and returns the stored record. The password
// hash never serializes; the User type hides it from JSON.
func (a *AuthController) Register(ctx router.Context) error {
	payload := &RegisterPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	user, err := a.auth.Register(ctx.Context(), RegisterUserMessage{
		Username:     payload.Username,
		Email:        payload.Email,
		MobileNumber: payload.MobileNumber,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Password:     payload.Password,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, user)
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login verifies credentials and returns a bearer token envelope.
func (a *AuthController) Login(ctx router.Context) error {
	payload := &LoginPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	response, err := a.auth.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, response)
}

type PasswordRecoveryPayload struct {
	Email string `json:"email"`
}

func (r PasswordRecoveryPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordRecovery issues a reset token for the account registered under the
// given email. The response confirms issuance without echoing the token; it
// is delivered out-of-band.
func (a *AuthController) PasswordRecovery(ctx router.Context) error {
	payload := &PasswordRecoveryPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	record, err := a.auth.RequestPasswordRecovery(ctx.Context(), payload.Email)
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token_id": record.ID,
		"expiry":   record.ExpiryDate,
	})
}

type PasswordResetPayload struct {
	UserID      string `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r PasswordResetPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUID),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, 100)),
	)
}

// PasswordReset redeems a reset token and stores the new password.
func (a *AuthController) PasswordReset(ctx router.Context) error {
	payload := &PasswordResetPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return a.badRequest(ctx, err)
	}

	if err := a.auth.ResetPassword(ctx.Context(), userID, payload.Token, payload.NewPassword); err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "password updated",
	})
}

type SetRolesPayload struct {
	Roles []string `json:"roles"`
}

func (r SetRolesPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Roles, validation.Required, validation.Length(1, 10)),
	)
}

// SetRoles replaces the target user's roles wholesale. Unknown role names in
// the payload are dropped; an all-unknown payload reads as empty and is
// rejected.
func (a *AuthController) SetRoles(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.badRequest(ctx, err)
	}

	payload := &SetRolesPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	user, err := a.auth.SetRoles(ctx.Context(), id, RoleSetFromNames(payload.Roles))
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

type UpdateUserPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
	)
}

// UpdateUser applies a profile update to the target user.
func (a *AuthController) UpdateUser(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.badRequest(ctx, err)
	}

	payload := &UpdateUserPayload{}
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err)
	}

	user, err := a.auth.UpdateUser(ctx.Context(), id, UpdateUserMessage{
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// DeleteUser removes the target user and their reset tokens.
func (a *AuthController) DeleteUser(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.badRequest(ctx, err)
	}

	if err := a.auth.DeleteUser(ctx.Context(), id); err != nil {
		return a.errorResponse(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "user deleted",
	})
}

// Health returns a liveness snapshot.
func (a *AuthController) Health(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, Health())
}

func (a *AuthController) badRequest(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"error": err.Error(),
	})
}

func (a *AuthController) errorResponse(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	a.Logger.Error("request failed: %s (category=%s)", richErr.Message, richErr.Category)

	return ctx.JSON(status, map[string]string{
		"error": richErr.Message,
		"code":  string(richErr.TextCode),
	})
}
