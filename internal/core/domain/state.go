package domain

// AuthState represents the lifecycle state of a client auth context.
type AuthState string

const (
	StateUninitialized   AuthState = "uninitialized"
	StateLoading         AuthState = "loading"
	StateUnauthenticated AuthState = "unauthenticated"
	StateProfileLoading  AuthState = "profile_loading"
	StateProfileReady    AuthState = "profile_ready"
)

// validAuthTransitions defines the allowed state machine transitions.
var validAuthTransitions = map[AuthState][]AuthState{
	StateUninitialized:   {StateLoading},
	StateLoading:         {StateUnauthenticated, StateProfileLoading},
	StateUnauthenticated: {StateProfileLoading},
	StateProfileLoading:  {StateProfileReady, StateUnauthenticated},
	StateProfileReady:    {StateProfileLoading, StateUnauthenticated},
}

// CanTransitionTo reports whether moving from s to next is a valid transition.
func (s AuthState) CanTransitionTo(next AuthState) bool {
	for _, allowed := range validAuthTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Authenticated reports whether the state carries an established session.
func (s AuthState) Authenticated() bool {
	return s == StateProfileLoading || s == StateProfileReady
}

// Resolved reports whether initialization has completed: dependent views may
// only render protected content once the state is resolved.
func (s AuthState) Resolved() bool {
	return s == StateUnauthenticated || s == StateProfileLoading || s == StateProfileReady
}
