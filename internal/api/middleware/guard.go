package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/api/metrics"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// GuardConfig controls how protected views respond to denied visitors.
type GuardConfig struct {
	// JWTSecret validates the access token carried by the request.
	JWTSecret string
	// Profiles resolves the visitor's profile; role and is_active live
	// there, so authentication alone never admits a guarded route.
	Profiles ports.ProfileRepository
	// LoginPath receives unauthenticated browser visitors, with the
	// original destination in the "redirect" query parameter.
	LoginPath string
	// LandingPath receives role-mismatched browser visitors when
	// ExplicitDeny is off.
	LandingPath string
	// ExplicitDeny renders a 403 access-denied response on role mismatch
	// instead of redirecting to LandingPath.
	ExplicitDeny bool
}

// Guard gates a protected view. Unauthenticated browser visitors are
// redirected to the login entry point carrying the requested destination;
// API clients get 401 JSON. A required role is checked against the profile,
// and a suspended account is blocked outright even when role matches.
func Guard(cfg GuardConfig, requireRole string) echo.MiddlewareFunc {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	landingPath := cfg.LandingPath
	if landingPath == "" {
		landingPath = "/"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			claims, ok := parseAccessClaims(token, cfg.JWTSecret)
			if token == "" || !ok {
				metrics.GuardDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				if wantsHTML(c) {
					dest := url.QueryEscape(c.Request().RequestURI)
					return c.Redirect(http.StatusFound, loginPath+"?redirect="+dest)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			userID, _ := claims["sub"].(string)
			profile, err := cfg.Profiles.FindByID(c.Request().Context(), userID)
			if err != nil {
				// Without a resolved profile the role is unknown; a guarded
				// view must not render on authentication alone.
				metrics.GuardDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				if wantsHTML(c) {
					dest := url.QueryEscape(c.Request().RequestURI)
					return c.Redirect(http.StatusFound, loginPath+"?redirect="+dest)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			if !profile.IsActive {
				metrics.GuardDecisionsTotal.WithLabelValues("suspended").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "your account has been suspended, please contact support",
				})
			}

			if requireRole != "" && profile.Role != requireRole {
				metrics.GuardDecisionsTotal.WithLabelValues("forbidden").Inc()
				if cfg.ExplicitDeny || !wantsHTML(c) {
					return c.JSON(http.StatusForbidden, map[string]string{
						"error": "you don't have permission to access this page",
					})
				}
				return c.Redirect(http.StatusFound, landingPath)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
			c.Set("user_id", userID)
			c.Set("email", claims["email"])
			c.Set("profile", profile)

			return next(c)
		}
	}
}

// wantsHTML reports whether the client is a browser navigation rather than
// an API call. Redirects only make sense for the former.
func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
