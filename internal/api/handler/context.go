package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call when the claims are missing; presence
// of user_id proves the middleware ran.
func ctxIdentity(c echo.Context) (userID, email string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ = c.Get("email").(string)
	return userID, email, nil
}

// clientIP resolves the caller address for rate limiting and auditing.
func clientIP(c echo.Context) string {
	return c.RealIP()
}
