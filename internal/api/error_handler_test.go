package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec.Code, resp.Error
}

func TestErrorHandler_TaxonomyMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{domain.ErrUsernameTaken, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrSessionExpired, http.StatusUnauthorized},
		{domain.ErrNotAuthenticated, http.StatusUnauthorized},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrAccountSuspended, http.StatusForbidden},
		{domain.ErrProfileNotFound, http.StatusNotFound},
		{domain.ErrWorksheetNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		code, _ := renderError(t, tc.err)
		if code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestErrorHandler_ValidationErrorKeepsField(t *testing.T) {
	code, msg := renderError(t, domain.Validation("password", "must contain a number"))

	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if msg != "password: must contain a number" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	code, msg := renderError(t, echo.NewHTTPError(http.StatusBadRequest, "invalid payload"))

	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if msg != "invalid payload" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestErrorHandler_UnexpectedErrorsAreOpaque(t *testing.T) {
	code, msg := renderError(t, errors.New("pq: connection refused on 10.0.0.3"))

	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg != "something went wrong, please try again" {
		t.Errorf("internal details must not leak, got %q", msg)
	}
}

func TestErrorHandler_ServiceErrorCauseHidden(t *testing.T) {
	err := domain.Servicef("find credentials", errors.New("mongo: server selection timeout"))

	code, msg := renderError(t, err)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if msg == err.Error() {
		t.Error("service error internals must not reach the client")
	}
}
