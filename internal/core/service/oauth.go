package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// GoogleUserInfoURL is where identities are fetched from in production.
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthIdentity is the slice of the provider's userinfo payload we consume.
// Field names follow Google's v2 userinfo schema.
type OAuthIdentity struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// OAuthService runs the authorization-code sign-in flow against a single
// provider and hands the asserted identity to the auth service.
type OAuthService struct {
	conf        *oauth2.Config
	userInfoURL string
	auth        *AuthService
}

func NewOAuthService(conf *oauth2.Config, userInfoURL string, auth *AuthService) *OAuthService {
	return &OAuthService{conf: conf, userInfoURL: userInfoURL, auth: auth}
}

// AuthCodeURL returns the provider consent page URL bound to state.
func (s *OAuthService) AuthCodeURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a session, creating the account on
// first sign-in. Providers that withhold the email cannot be linked to an
// account, so that case fails.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*ports.SignInResult, error) {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, domain.Servicef("oauth code exchange", err)
	}

	ident, err := s.identity(ctx, tok)
	if err != nil {
		return nil, err
	}
	if ident.Email == "" {
		return nil, domain.Servicef("oauth identity", errors.New("provider returned no email"))
	}

	return s.auth.SignInExternal(ctx, ident.Email, ident.Name, ident.Picture)
}

func (s *OAuthService) identity(ctx context.Context, tok *oauth2.Token) (*OAuthIdentity, error) {
	resp, err := s.conf.Client(ctx, tok).Get(s.userInfoURL)
	if err != nil {
		return nil, domain.Servicef("oauth userinfo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Servicef("oauth userinfo", fmt.Errorf("status %d", resp.StatusCode))
	}
	var ident OAuthIdentity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return nil, domain.Servicef("oauth userinfo", err)
	}
	return &ident, nil
}

// NewOAuthState returns a random URL-safe value binding the callback to the
// browser that initiated the flow.
func NewOAuthState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.Servicef("oauth state", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
