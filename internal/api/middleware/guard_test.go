package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// guardProfiles is a minimal profile lookup for guard tests.
type guardProfiles struct {
	profile *domain.Profile
	err     error
}

func (r *guardProfiles) FindByID(context.Context, string) (*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.profile, nil
}

func (r *guardProfiles) FindByUsername(context.Context, string) (*domain.Profile, error) {
	return nil, domain.ErrProfileNotFound
}

func (r *guardProfiles) Create(context.Context, *domain.Profile) error { return nil }

func (r *guardProfiles) UpdatePartial(context.Context, string, domain.ProfilePatch) error {
	return nil
}

func (r *guardProfiles) TouchLastLogin(context.Context, string) error { return nil }

func (r *guardProfiles) List(context.Context) ([]*domain.Profile, error) { return nil, nil }

func guardConfig(profiles *guardProfiles) GuardConfig {
	return GuardConfig{
		JWTSecret:   testSecret,
		Profiles:    profiles,
		LoginPath:   "/auth/login",
		LandingPath: "/",
	}
}

func activeProfile(role string) *guardProfiles {
	return &guardProfiles{profile: &domain.Profile{ID: "u1", Role: role, IsActive: true}}
}

func guardRequest(t *testing.T, target string, browser, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if browser {
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+accessToken(t))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGuard_UnauthenticatedBrowser_RedirectsWithDestination(t *testing.T) {
	c, rec := guardRequest(t, "/app/worksheets?page=2", true, false)

	handler := Guard(guardConfig(activeProfile(domain.RoleUser)), "")(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	want := "/auth/login?redirect=" + url.QueryEscape("/app/worksheets?page=2")
	if location != want {
		t.Errorf("expected redirect to %q, got %q", want, location)
	}
}

func TestGuard_UnauthenticatedAPI_Gets401(t *testing.T) {
	c, _ := guardRequest(t, "/app/worksheets", false, false)

	handler := Guard(guardConfig(activeProfile(domain.RoleUser)), "")(func(c echo.Context) error {
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestGuard_ProfileLookupFailure_TreatedAsUnauthenticated(t *testing.T) {
	// When the profile cannot be resolved, the role is unknown; the guarded
	// view must not render on authentication alone.
	profiles := &guardProfiles{err: domain.ErrProfileNotFound}
	c, rec := guardRequest(t, "/app/worksheets", true, true)

	handler := Guard(guardConfig(profiles), "")(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect when profile is unresolvable, got %d", rec.Code)
	}
}

func TestGuard_SuspendedAccount_Blocked(t *testing.T) {
	profiles := &guardProfiles{profile: &domain.Profile{ID: "u1", Role: domain.RoleAdmin, IsActive: false}}

	// Suspension blocks regardless of client kind or role match.
	for _, browser := range []bool{true, false} {
		c, rec := guardRequest(t, "/admin/users", browser, true)

		handler := Guard(guardConfig(profiles), domain.RoleAdmin)(func(c echo.Context) error {
			t.Fatal("should not reach next handler")
			return nil
		})

		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("browser=%v: expected 403, got %d", browser, rec.Code)
		}
	}
}

func TestGuard_RoleMismatchBrowser_RedirectsToLanding(t *testing.T) {
	c, rec := guardRequest(t, "/admin/users", true, true)

	handler := Guard(guardConfig(activeProfile(domain.RoleUser)), domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/" {
		t.Errorf("expected redirect to landing, got %q", rec.Header().Get("Location"))
	}
}

func TestGuard_RoleMismatchAPI_Gets403(t *testing.T) {
	c, rec := guardRequest(t, "/admin/users", false, true)

	handler := Guard(guardConfig(activeProfile(domain.RoleUser)), domain.RoleAdmin)(func(c echo.Context) error {
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestGuard_RoleMismatchExplicitDeny_403EvenForBrowser(t *testing.T) {
	cfg := guardConfig(activeProfile(domain.RoleUser))
	cfg.ExplicitDeny = true
	c, rec := guardRequest(t, "/admin/users", true, true)

	handler := Guard(cfg, domain.RoleAdmin)(func(c echo.Context) error {
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestGuard_Allows_InjectsProfile(t *testing.T) {
	c, rec := guardRequest(t, "/app/worksheets", true, true)

	called := false
	handler := Guard(guardConfig(activeProfile(domain.RoleUser)), "")(func(c echo.Context) error {
		called = true
		if c.Get("user_id") != "u1" {
			t.Errorf("expected user_id u1, got %v", c.Get("user_id"))
		}
		profile, ok := c.Get("profile").(*domain.Profile)
		if !ok || profile.ID != "u1" {
			t.Errorf("expected resolved profile in context, got %v", c.Get("profile"))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_AdminAllowedOnAdminRoute(t *testing.T) {
	c, _ := guardRequest(t, "/admin/users", false, true)

	called := false
	handler := Guard(guardConfig(activeProfile(domain.RoleAdmin)), domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("admin must pass the admin guard")
	}
}
