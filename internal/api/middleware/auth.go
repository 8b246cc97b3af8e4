package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// sessionCookie is where browser clients carry the access token; API
// clients use the Authorization header.
const sessionCookie = "jooy_session"

// Auth validates the access token and injects identity claims into context.
// Requests without a valid token are rejected with 401; use Guard for
// browser routes that should redirect instead.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			claims, ok := parseAccessClaims(token, jwtSecret)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("user_id", claims["sub"])
			c.Set("email", claims["email"])
			c.Set("token_id", claims["jti"])
			c.Set("access_token", token)

			return next(c)
		}
	}
}

// bearerToken extracts the access token from the Authorization header or,
// failing that, the session cookie.
func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// parseAccessClaims validates signature, expiry, and the access purpose.
func parseAccessClaims(token, jwtSecret string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, false
	}
	if purpose, _ := claims["purpose"].(string); purpose != "access" {
		return nil, false
	}
	return claims, true
}
