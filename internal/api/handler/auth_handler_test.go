package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
	"github.com/Jooy-edu/jooy-auth/internal/core/service"
)

type stubFlows struct {
	signUpFn   func(ctx context.Context, input ports.SignUpInput) (*domain.User, error)
	loginFn    func(ctx context.Context, input service.LoginInput) (*ports.SignInResult, error)
	signOutFn  func(ctx context.Context, sess *domain.Session) error
	resetFn    func(ctx context.Context, email string) error
	exchangeFn func(ctx context.Context, token string) (*ports.SignInResult, error)
	updateFn   func(ctx context.Context, sess *domain.Session, newPassword string) error
	verifyFn   func(ctx context.Context, token string) error
	refreshFn  func(ctx context.Context, sess *domain.Session) (*ports.SignInResult, error)
}

func (s *stubFlows) SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error) {
	return s.signUpFn(ctx, input)
}

func (s *stubFlows) Login(ctx context.Context, input service.LoginInput) (*ports.SignInResult, error) {
	return s.loginFn(ctx, input)
}

func (s *stubFlows) SignOut(ctx context.Context, sess *domain.Session) error {
	return s.signOutFn(ctx, sess)
}

func (s *stubFlows) SendPasswordReset(ctx context.Context, email string) error {
	return s.resetFn(ctx, email)
}

func (s *stubFlows) ExchangeRecoveryToken(ctx context.Context, token string) (*ports.SignInResult, error) {
	return s.exchangeFn(ctx, token)
}

func (s *stubFlows) UpdatePassword(ctx context.Context, sess *domain.Session, newPassword string) error {
	return s.updateFn(ctx, sess, newPassword)
}

func (s *stubFlows) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

func (s *stubFlows) Refresh(ctx context.Context, sess *domain.Session) (*ports.SignInResult, error) {
	return s.refreshFn(ctx, sess)
}

func jsonRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func signInResult(userID string) *ports.SignInResult {
	return &ports.SignInResult{
		User: &domain.User{ID: userID, Email: "ana@example.com"},
		Session: &domain.Session{
			AccessToken: "token-" + userID,
			TokenID:     "tid-" + userID,
			UserID:      userID,
			ExpiresAt:   time.Now().UTC().Add(time.Hour),
		},
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubFlows{
		signUpFn: func(_ context.Context, input ports.SignUpInput) (*domain.User, error) {
			if input.Email != "ana@example.com" || input.Username != "ana" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "u1", Email: input.Email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"Sup3r!Secret","confirm_password":"Sup3r!Secret","full_name":"Ana","username":"ana"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, hasSession := resp["session"]; hasSession {
		t.Error("registration must not return a session")
	}
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	stub := &stubFlows{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.User, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"Sup3r!Secret","confirm_password":"Different1!","full_name":"Ana"}`)

	err := handler.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubFlows{})

	c, _ := jsonRequest(t, http.MethodPost, "/auth/register", "not-json")

	err := handler.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_DuplicateEmailPropagates(t *testing.T) {
	stub := &stubFlows{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"Sup3r!Secret","confirm_password":"Sup3r!Secret","full_name":"Ana"}`)

	// Taxonomy errors flow to the central error handler untouched.
	if err := handler.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthHandler_Login_Success_SetsSessionCookie(t *testing.T) {
	stub := &stubFlows{
		loginFn: func(_ context.Context, input service.LoginInput) (*ports.SignInResult, error) {
			if input.Email != "ana@example.com" {
				t.Fatalf("unexpected email %q", input.Email)
			}
			return signInResult("u1"), nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"Sup3r!Secret","remember_me":true}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if cookies[0].Expires.IsZero() {
		t.Error("remember_me must make the cookie persistent")
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be http-only")
	}
}

func TestAuthHandler_Login_WithoutRememberMe_SessionCookieOnly(t *testing.T) {
	stub := &stubFlows{
		loginFn: func(context.Context, service.LoginInput) (*ports.SignInResult, error) {
			return signInResult("u1"), nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"Sup3r!Secret"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].Expires.IsZero() {
		t.Error("without remember_me the cookie must expire with the browser session")
	}
}

func TestAuthHandler_Login_ErrorsPropagate(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidCredentials, domain.ErrRateLimited, domain.ErrAccountSuspended} {
		stub := &stubFlows{
			loginFn: func(context.Context, service.LoginInput) (*ports.SignInResult, error) {
				return nil, want
			},
		}
		handler := NewAuthHandler(stub)

		c, _ := jsonRequest(t, http.MethodPost, "/auth/login",
			`{"email":"ana@example.com","password":"whatever"}`)

		if err := handler.Login(c); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Forgot / reset password
// ---------------------------------------------------------------------------

func TestAuthHandler_ForgotPassword_NeutralForUnknownAddress(t *testing.T) {
	for _, resetErr := range []error{nil, domain.ErrUserNotFound} {
		stub := &stubFlows{
			resetFn: func(context.Context, string) error { return resetErr },
		}
		handler := NewAuthHandler(stub)

		c, rec := jsonRequest(t, http.MethodPost, "/auth/password/forgot",
			`{"email":"any@example.com"}`)

		if err := handler.ForgotPassword(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp messageResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if !strings.Contains(resp.Message, "if an account exists") {
			t.Errorf("response must be neutral, got %q", resp.Message)
		}
	}
}

func TestAuthHandler_ForgotPassword_InfrastructureErrorSurfaces(t *testing.T) {
	stub := &stubFlows{
		resetFn: func(context.Context, string) error {
			return domain.Servicef("send reset mail", errors.New("smtp down"))
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/password/forgot",
		`{"email":"ana@example.com"}`)

	if err := handler.ForgotPassword(c); err == nil {
		t.Fatal("infrastructure failures must surface")
	}
}

func TestAuthHandler_ResetPassword_ExchangesThenUpdates(t *testing.T) {
	var exchanged, updated bool
	stub := &stubFlows{
		exchangeFn: func(_ context.Context, token string) (*ports.SignInResult, error) {
			exchanged = true
			if token != "recovery-token" {
				t.Fatalf("unexpected token %q", token)
			}
			res := signInResult("u1")
			res.Session.Recovery = true
			return res, nil
		},
		updateFn: func(_ context.Context, sess *domain.Session, newPassword string) error {
			updated = true
			if !sess.Recovery {
				t.Error("update must receive the recovery session")
			}
			if newPassword != "N3w!Password" {
				t.Errorf("unexpected password %q", newPassword)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/password/reset",
		`{"token":"recovery-token","new_password":"N3w!Password","confirm_password":"N3w!Password"}`)

	if err := handler.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !exchanged || !updated {
		t.Fatalf("expected exchange and update, got exchanged=%v updated=%v", exchanged, updated)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_ExpiredToken(t *testing.T) {
	stub := &stubFlows{
		exchangeFn: func(context.Context, string) (*ports.SignInResult, error) {
			return nil, domain.ErrSessionExpired
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := jsonRequest(t, http.MethodPost, "/auth/password/reset",
		`{"token":"stale","new_password":"N3w!Password","confirm_password":"N3w!Password"}`)

	if err := handler.ResetPassword(c); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

func TestAuthHandler_Verify_RequiresToken(t *testing.T) {
	handler := NewAuthHandler(&stubFlows{})

	c, _ := jsonRequest(t, http.MethodGet, "/auth/verify", "")

	err := handler.Verify(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Verify_Success(t *testing.T) {
	var verified string
	stub := &stubFlows{
		verifyFn: func(_ context.Context, token string) error {
			verified = token
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodGet, "/auth/verify?token=abc", "")

	if err := handler.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if verified != "abc" {
		t.Errorf("expected token abc, got %q", verified)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	stub := &stubFlows{
		signOutFn: func(_ context.Context, sess *domain.Session) error {
			if sess.UserID != "u1" {
				t.Errorf("expected session for u1, got %+v", sess)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := jsonRequest(t, http.MethodPost, "/auth/logout", "")
	c.Set("user_id", "u1")
	c.Set("email", "ana@example.com")
	c.Set("access_token", "token-u1")
	c.Set("token_id", "tid-u1")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}

func TestAuthHandler_Logout_WithoutIdentity(t *testing.T) {
	handler := NewAuthHandler(&stubFlows{})

	c, _ := jsonRequest(t, http.MethodPost, "/auth/logout", "")

	err := handler.Logout(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %v", err)
	}
}
