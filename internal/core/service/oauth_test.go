package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Fake provider
// ---------------------------------------------------------------------------

// fakeProvider serves the token and userinfo endpoints of an OAuth provider.
// Only the code "good-code" exchanges successfully.
func fakeProvider(t *testing.T, ident *OAuthIdentity) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "provider-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(ident)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthFixture(t *testing.T, ident *OAuthIdentity) (*authFixture, *OAuthService) {
	t.Helper()

	srv := fakeProvider(t, ident)
	f := newAuthFixture()
	conf := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://app.example.com/auth/oauth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/auth",
			TokenURL: srv.URL + "/token",
		},
	}
	return f, NewOAuthService(conf, srv.URL+"/userinfo", f.svc)
}

func googleIdentity() *OAuthIdentity {
	return &OAuthIdentity{
		Email:         "ana@example.com",
		EmailVerified: true,
		Name:          "Ana Torres",
		Picture:       "https://lh3.example.com/ana.jpg",
	}
}

// ---------------------------------------------------------------------------
// Exchange
// ---------------------------------------------------------------------------

func TestOAuth_FirstSignIn_CreatesAccountAndSession(t *testing.T) {
	f, oauth := newOAuthFixture(t, googleIdentity())

	res, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if res.User.Email != "ana@example.com" {
		t.Errorf("user email = %q", res.User.Email)
	}
	if !res.User.EmailVerified {
		t.Error("provider-asserted email should arrive verified")
	}
	if res.Seq == 0 {
		t.Error("session establishment must carry a sequence number")
	}

	profile, err := f.profiles.FindByID(context.Background(), res.User.ID)
	if err != nil {
		t.Fatalf("profile row missing: %v", err)
	}
	if profile.FullName != "Ana Torres" || profile.AvatarURL != "https://lh3.example.com/ana.jpg" {
		t.Errorf("profile not filled from identity: %+v", profile)
	}
	if profile.CreditsRemaining != 10 {
		t.Errorf("signup credits = %d, want 10", profile.CreditsRemaining)
	}

	if _, err := f.svc.ValidateAccessToken(context.Background(), res.Session.AccessToken); err != nil {
		t.Errorf("issued token does not validate: %v", err)
	}
}

func TestOAuth_SecondSignIn_ReusesAccount(t *testing.T) {
	_, oauth := newOAuthFixture(t, googleIdentity())

	first, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("first exchange: %v", err)
	}
	second, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("second exchange: %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Errorf("repeat sign-in created a new account: %s vs %s", first.User.ID, second.User.ID)
	}
}

func TestOAuth_SuspendedAccount_RefusesSession(t *testing.T) {
	f, oauth := newOAuthFixture(t, googleIdentity())

	res, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	f.profiles.byID[res.User.ID].IsActive = false

	if _, err := oauth.Exchange(context.Background(), "good-code"); !errors.Is(err, domain.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestOAuth_AccountHasNoUsablePassword(t *testing.T) {
	_, oauth := newOAuthFixture(t, googleIdentity())

	res, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	f2 := oauth.auth
	if _, err := f2.SignInWithPassword(context.Background(), res.User.Email, ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty password must not sign in, got %v", err)
	}
	if _, err := f2.SignInWithPassword(context.Background(), res.User.Email, testPassword); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("guessed password must not sign in, got %v", err)
	}
}

func TestOAuth_BadCode_FailsAsServiceError(t *testing.T) {
	_, oauth := newOAuthFixture(t, googleIdentity())

	_, err := oauth.Exchange(context.Background(), "stolen-code")

	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
}

func TestOAuth_IdentityWithoutEmail_Fails(t *testing.T) {
	_, oauth := newOAuthFixture(t, &OAuthIdentity{Name: "No Mail"})

	_, err := oauth.Exchange(context.Background(), "good-code")

	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
}

func TestOAuth_PublishesSignedInEvent(t *testing.T) {
	f, oauth := newOAuthFixture(t, googleIdentity())

	var events []domain.AuthEvent
	unsub := f.svc.Subscribe(func(ev domain.AuthEvent) { events = append(events, ev) })
	defer unsub()

	res, err := oauth.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if len(events) != 1 || events[0].Type != domain.EventSignedIn {
		t.Fatalf("expected one SIGNED_IN event, got %+v", events)
	}
	if events[0].Seq != res.Seq {
		t.Errorf("event seq %d != result seq %d", events[0].Seq, res.Seq)
	}
}

// ---------------------------------------------------------------------------
// AuthCodeURL / state
// ---------------------------------------------------------------------------

func TestOAuth_AuthCodeURL_CarriesState(t *testing.T) {
	_, oauth := newOAuthFixture(t, googleIdentity())

	url := oauth.AuthCodeURL("state-xyz")
	if !strings.Contains(url, "state=state-xyz") {
		t.Errorf("consent URL missing state: %s", url)
	}
	if !strings.Contains(url, "client_id=client-id") {
		t.Errorf("consent URL missing client id: %s", url)
	}
}

func TestNewOAuthState_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		state, err := NewOAuthState()
		if err != nil {
			t.Fatalf("state: %v", err)
		}
		if seen[state] {
			t.Fatalf("state %q repeated", state)
		}
		seen[state] = true
	}
}
