package domain

import "testing"

func TestAuthState_Transitions(t *testing.T) {
	cases := []struct {
		from, to AuthState
		allowed  bool
	}{
		{StateUninitialized, StateLoading, true},
		{StateUninitialized, StateProfileReady, false},
		{StateLoading, StateUnauthenticated, true},
		{StateLoading, StateProfileLoading, true},
		{StateLoading, StateProfileReady, false}, // profile fetch always intervenes
		{StateUnauthenticated, StateProfileLoading, true},
		{StateUnauthenticated, StateLoading, false},
		{StateProfileLoading, StateProfileReady, true},
		{StateProfileLoading, StateUnauthenticated, true},
		{StateProfileReady, StateUnauthenticated, true},
		{StateProfileReady, StateProfileLoading, true}, // identity switch
		{StateProfileReady, StateLoading, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestAuthState_Authenticated(t *testing.T) {
	authenticated := map[AuthState]bool{
		StateUninitialized:   false,
		StateLoading:         false,
		StateUnauthenticated: false,
		StateProfileLoading:  true,
		StateProfileReady:    true,
	}
	for state, want := range authenticated {
		if got := state.Authenticated(); got != want {
			t.Errorf("%s.Authenticated(): expected %v, got %v", state, want, got)
		}
	}
}

func TestAuthState_Resolved(t *testing.T) {
	resolved := map[AuthState]bool{
		StateUninitialized:   false,
		StateLoading:         false,
		StateUnauthenticated: true,
		StateProfileLoading:  true,
		StateProfileReady:    true,
	}
	for state, want := range resolved {
		if got := state.Resolved(); got != want {
			t.Errorf("%s.Resolved(): expected %v, got %v", state, want, got)
		}
	}
}
