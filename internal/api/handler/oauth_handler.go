package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/api/metrics"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
	"github.com/Jooy-edu/jooy-auth/internal/core/service"
)

const oauthStateCookie = "jooy_oauth_state"

// OAuthFlows is the slice of the OAuth service the HTTP handlers consume.
type OAuthFlows interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ports.SignInResult, error)
}

type OAuthHandler struct {
	flows OAuthFlows
}

func NewOAuthHandler(flows OAuthFlows) *OAuthHandler {
	return &OAuthHandler{flows: flows}
}

// Start sends the visitor to the provider's consent page. A short-lived
// state cookie binds the eventual callback to this browser.
//
// @Summary      Begin Google sign-in
// @Tags         auth
// @Success      302
// @Router       /auth/oauth/google [get]
func (h *OAuthHandler) Start(c echo.Context) error {
	state, err := service.NewOAuthState()
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusFound, h.flows.AuthCodeURL(state))
}

// Callback completes the code exchange and establishes the session.
//
// @Summary      Complete Google sign-in
// @Tags         auth
// @Param        state  query  string  true   "State from the consent redirect"
// @Param        code   query  string  false  "Authorization code"
// @Param        error  query  string  false  "Provider error code"
// @Success      302
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/oauth/google/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	if c.QueryParam("error") != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "sign-in was cancelled or refused")
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		return echo.NewHTTPError(http.StatusBadRequest, "state mismatch")
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	res, err := h.flows.Exchange(c.Request().Context(), code)
	if err != nil {
		recordLoginMetric(err)
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/auth/oauth",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	setSessionCookie(c, res.Session, false)
	return c.Redirect(http.StatusFound, "/")
}
