package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/api/metrics"
	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
	"github.com/Jooy-edu/jooy-auth/internal/core/service"
)

const sessionCookie = "jooy_session"

// AuthFlows is the slice of the auth service the HTTP handlers consume.
type AuthFlows interface {
	SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error)
	Login(ctx context.Context, input service.LoginInput) (*ports.SignInResult, error)
	SignOut(ctx context.Context, sess *domain.Session) error
	SendPasswordReset(ctx context.Context, email string) error
	ExchangeRecoveryToken(ctx context.Context, token string) (*ports.SignInResult, error)
	UpdatePassword(ctx context.Context, sess *domain.Session, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	Refresh(ctx context.Context, sess *domain.Session) (*ports.SignInResult, error)
}

type AuthHandler struct {
	flows AuthFlows
}

func NewAuthHandler(flows AuthFlows) *AuthHandler {
	return &AuthHandler{flows: flows}
}

// Register creates a new account. No session is established: the visitor
// must verify their email first.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.flows.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(user)})
}

// Login exchanges credentials for a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.flows.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        clientIP(c),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		recordLoginMetric(err)
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	setSessionCookie(c, res.Session, req.RememberMe)
	return c.JSON(http.StatusOK, authResponse{
		User:    toUserResponse(res.User),
		Session: toSessionResponse(res.Session),
	})
}

// Logout invalidates the current session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sess := sessionFromContext(c, userID)
	if err := h.flows.SignOut(c.Request().Context(), sess); err != nil {
		return err
	}

	clearSessionCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "signed out"})
}

// Refresh exchanges the current session for a fresh token.
//
// @Summary      Refresh session token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.flows.Refresh(c.Request().Context(), sessionFromContext(c, userID))
	if err != nil {
		return err
	}

	setSessionCookie(c, res.Session, false)
	return c.JSON(http.StatusOK, authResponse{
		User:    toUserResponse(res.User),
		Session: toSessionResponse(res.Session),
	})
}

// ForgotPassword dispatches a reset link. The response is identical whether
// or not the address has an account.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Router       /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	metrics.PasswordResetsTotal.Inc()

	err := h.flows.SendPasswordReset(c.Request().Context(), req.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	// Same body either way: account existence must not leak.
	return c.JSON(http.StatusOK, messageResponse{
		Message: "if an account exists for that address, a reset link has been sent",
	})
}

// ResetPassword exchanges a recovery token and sets a new password.
//
// @Summary      Reset password with a recovery token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Recovery token and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.flows.ExchangeRecoveryToken(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	if err := h.flows.UpdatePassword(c.Request().Context(), res.Session, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password updated, please sign in"})
}

// UpdatePassword sets a new password for an authenticated session.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updatePasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/password [put]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess := sessionFromContext(c, userID)
	if err := h.flows.UpdatePassword(c.Request().Context(), sess, req.NewPassword); err != nil {
		return err
	}

	clearSessionCookie(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated, please sign in again"})
}

// Verify confirms an email address from a verification link.
//
// @Summary      Verify email address
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      401    {object}  map[string]string
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	if err := h.flows.VerifyEmail(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email verified"})
}

// sessionFromContext rebuilds the session the Auth middleware validated.
func sessionFromContext(c echo.Context, userID string) *domain.Session {
	token, _ := c.Get("access_token").(string)
	tokenID, _ := c.Get("token_id").(string)
	return &domain.Session{
		AccessToken: token,
		TokenID:     tokenID,
		UserID:      userID,
	}
}

func setSessionCookie(c echo.Context, sess *domain.Session, persistent bool) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		cookie.Expires = sess.ExpiresAt
	}
	c.SetCookie(cookie)
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func registerOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "duplicate_username"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func recordLoginMetric(err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		metrics.LoginRateLimitedTotal.Inc()
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
	case errors.Is(err, domain.ErrAccountSuspended):
		metrics.LoginAttemptsTotal.WithLabelValues("suspended").Inc()
	default:
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
	}
}
