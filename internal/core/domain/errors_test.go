package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestServicef_WrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := Servicef("find credentials", cause)

	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *ServiceError, got %T", err)
	}
	if serr.Op != "find credentials" {
		t.Errorf("expected op preserved, got %q", serr.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must stay matchable")
	}
}

func TestServicef_TaxonomyErrorsPassThrough(t *testing.T) {
	for _, known := range []error{
		ErrValidation, ErrDuplicateEmail, ErrUsernameTaken, ErrInvalidCredentials,
		ErrRateLimited, ErrSessionExpired, ErrNotAuthenticated,
		ErrUserNotFound, ErrProfileNotFound, ErrAccountSuspended,
	} {
		got := Servicef("op", known)
		if got != known {
			t.Errorf("%v must pass through unwrapped, got %v", known, got)
		}
	}
}

func TestServicef_WrappedTaxonomyErrorsPassThrough(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", ErrInvalidCredentials)

	got := Servicef("sign in", wrapped)
	if !errors.Is(got, ErrInvalidCredentials) {
		t.Fatalf("taxonomy match must survive, got %v", got)
	}
	var serr *ServiceError
	if errors.As(got, &serr) {
		t.Error("already-classified errors must not be rewrapped")
	}
}

func TestServicef_NilIsNil(t *testing.T) {
	if err := Servicef("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
