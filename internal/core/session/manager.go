// Package session implements the client-side authentication state manager:
// the single source of truth for the current User, Profile, and Session of
// one client instance. A Manager is an explicitly constructed object, not a
// process-wide singleton; tests and embedders create as many independent
// instances as they need.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// Deps carries the collaborators a Manager needs. Provider, Profiles,
// Limiter, and Audit are required; the rest degrade to no-ops when nil.
type Deps struct {
	Provider ports.AuthProvider
	Profiles ports.ProfileRepository
	Limiter  ports.LoginRateLimiter
	Audit    ports.LoginAuditor
	Sessions ports.SessionRepository
	Prefs    ports.PreferenceStore

	// ClientID identifies this client instance for durable preferences.
	ClientID  string
	IP        string
	UserAgent string

	Logger zerolog.Logger
}

// Manager owns the in-memory auth state of one client instance. All field
// writes are serialized under one mutex; session-change events and explicit
// operation results are tagged with the provider's monotonic sequence so a
// late, stale notification can never overwrite newer state. After Close,
// in-flight results are discarded silently.
type Manager struct {
	deps Deps

	mu          sync.Mutex
	state       domain.AuthState
	user        *domain.User
	profile     *domain.Profile
	session     *domain.Session
	applied     uint64
	closed      bool
	unsubscribe ports.Unsubscribe
}

// Snapshot is a consistent read of the manager's observable state.
type Snapshot struct {
	State   domain.AuthState
	Loading bool
	User    *domain.User
	Profile *domain.Profile
	Session *domain.Session
}

var errAlreadyInitialized = errors.New("session: manager already initialized")

// New constructs an uninitialized Manager. Call Initialize before use and
// Close on teardown.
func New(deps Deps) *Manager {
	return &Manager{
		deps:  deps,
		state: domain.StateUninitialized,
	}
}

// Initialize restores any persisted session from the provider, resolves the
// profile for it, and registers the session-change subscription. The state
// stays Loading until the profile fetch (or its absence) resolves; dependent
// views must not render protected content before then.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.state != domain.StateUninitialized {
		m.mu.Unlock()
		return errAlreadyInitialized
	}
	m.state = domain.StateLoading
	m.mu.Unlock()

	// Subscribe outside the lock: a provider may deliver synchronously.
	unsub := m.deps.Provider.Subscribe(m.handleEvent)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		unsub()
		return nil
	}
	m.unsubscribe = unsub
	m.mu.Unlock()

	res, err := m.deps.Provider.CurrentSession(ctx)
	if err != nil {
		m.resolveUnauthenticated()
		return domain.Servicef("restore session", err)
	}
	if res == nil || res.Session == nil {
		m.resolveUnauthenticated()
		return nil
	}

	if !m.applySignedIn(res) {
		return nil
	}
	m.touchLastLogin(ctx, res.User.ID)
	return m.loadProfile(ctx, res.User.ID)
}

// Close releases the event subscription and marks the manager dead. Late
// responses from in-flight operations are dropped without error.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.closed = true
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Snapshot returns a copy of the current state. The Profile, when present,
// always belongs to the current User.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:   m.state,
		Loading: !m.state.Resolved(),
		User:    cloneUser(m.user),
		Profile: cloneProfile(m.profile),
		Session: cloneSession(m.session),
	}
}

// SignUp validates the registration fields client-side, pre-checks the
// optional username against existing profiles, and delegates credential
// creation to the provider. No session is established: the account requires
// a separate verification step. The username pre-check is inherently racy
// against concurrent registrations; the provider stays the final authority.
func (m *Manager) SignUp(ctx context.Context, email, password, fullName, username string) error {
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	if err := domain.ValidateFullName(fullName); err != nil {
		return err
	}
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}

	if username != "" {
		switch _, err := m.deps.Profiles.FindByUsername(ctx, username); {
		case err == nil:
			return domain.ErrUsernameTaken
		case errors.Is(err, domain.ErrProfileNotFound):
			// free to register
		default:
			return domain.Servicef("username check", err)
		}
	}

	_, err := m.deps.Provider.SignUp(ctx, ports.SignUpInput{
		Email:    email,
		Password: password,
		FullName: fullName,
		Username: username,
	})
	if err != nil {
		return domain.Servicef("sign up", err)
	}

	m.deps.Logger.Info().Str("email", email).Msg("registration submitted")
	return nil
}

// SignIn checks the rate-limit predicate before any credential exchange,
// audits the attempt outcome either way, and on success establishes the
// session and refreshes the profile. The remember-me preference is a durable
// client-side flag only; session lifetime stays with the provider.
func (m *Manager) SignIn(ctx context.Context, email, password string, rememberMe bool) error {
	if email == "" || password == "" {
		return domain.Validation("credentials", "email and password are required")
	}

	allowed, err := m.deps.Limiter.Allow(ctx, email, m.deps.IP)
	if err != nil {
		return domain.Servicef("rate limit check", err)
	}
	if !allowed {
		return domain.ErrRateLimited
	}

	res, err := m.deps.Provider.SignInWithPassword(ctx, email, password)
	m.audit(ctx, email, err == nil)
	if err != nil {
		if lerr := m.deps.Limiter.RecordFailure(ctx, email, m.deps.IP); lerr != nil {
			m.deps.Logger.Warn().Err(lerr).Str("email", email).Msg("rate limit bookkeeping failed")
		}
		return domain.Servicef("sign in", err)
	}

	if !m.applySignedIn(res) {
		return nil // manager closed or result outdated; discard quietly
	}

	m.rememberMe(ctx, rememberMe)
	m.recordSessionRow(ctx, res)
	m.touchLastLogin(ctx, res.User.ID)
	return m.loadProfile(ctx, res.User.ID)
}

// SignOut marks the server-tracked session row inactive (best-effort),
// invalidates the provider session, and clears all local state. Local
// teardown happens regardless of remote failures.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	sess := m.session
	user := m.user
	m.mu.Unlock()

	if user != nil && m.deps.Sessions != nil {
		if err := m.deps.Sessions.MarkInactive(ctx, user.ID); err != nil {
			m.deps.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("session row deactivation failed")
		}
	}

	var signOutErr error
	if sess != nil {
		signOutErr = m.deps.Provider.SignOut(ctx, sess)
	}

	m.clearLocalState()
	if m.deps.Prefs != nil {
		if err := m.deps.Prefs.Clear(ctx, m.deps.ClientID); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("preference clear failed")
		}
	}

	if signOutErr != nil {
		return domain.Servicef("sign out", signOutErr)
	}
	return nil
}

// ResetPassword asks the provider to dispatch a reset link. Unknown-address
// failures are normalized to success so response shape never reveals whether
// an account exists.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	err := m.deps.Provider.SendPasswordReset(ctx, email)
	if err == nil || errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	return domain.Servicef("reset password", err)
}

// UpdatePassword sets a new password. It requires a live session established
// through the reset-link exchange (or normal sign-in).
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess == nil || sess.Expired(time.Now().UTC()) {
		return domain.ErrSessionExpired
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := m.deps.Provider.UpdatePassword(ctx, sess, newPassword); err != nil {
		return domain.Servicef("update password", err)
	}
	return nil
}

// UpdateProfile sends a partial update and then re-fetches the full profile.
// The cached profile only ever reflects confirmed server state: there is no
// optimistic merge.
func (m *Manager) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	m.mu.Lock()
	user := m.user
	m.mu.Unlock()

	if user == nil {
		return domain.ErrNotAuthenticated
	}
	if patch.Username != nil {
		if err := domain.ValidateUsername(*patch.Username); err != nil {
			return err
		}
	}
	if patch.IsZero() {
		return nil
	}
	if err := m.deps.Profiles.UpdatePartial(ctx, user.ID, patch); err != nil {
		return domain.Servicef("update profile", err)
	}
	return m.loadProfile(ctx, user.ID)
}

// RefreshProfile re-fetches the profile for the current user. No-op when
// signed out.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	user := m.user
	m.mu.Unlock()

	if user == nil {
		return nil
	}
	return m.loadProfile(ctx, user.ID)
}

// handleEvent is the session-change subscription callback. It may interleave
// with explicit operations; the sequence guard keeps stale notifications from
// clobbering newer state.
func (m *Manager) handleEvent(ev domain.AuthEvent) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if ev.Seq <= m.applied {
		m.deps.Logger.Debug().
			Uint64("event_seq", ev.Seq).
			Uint64("applied_seq", m.applied).
			Str("type", string(ev.Type)).
			Msg("stale auth event dropped")
		m.mu.Unlock()
		return
	}
	m.applied = ev.Seq

	switch ev.Type {
	case domain.EventSignedOut:
		m.user = nil
		m.profile = nil
		m.session = nil
		m.state = domain.StateUnauthenticated
		m.mu.Unlock()

	case domain.EventSignedIn:
		// Clear the old profile before the new user becomes visible: no
		// window where a stale profile is attributed to the new identity.
		m.profile = nil
		m.user = cloneUser(ev.User)
		m.session = cloneSession(ev.Session)
		m.state = domain.StateProfileLoading
		userID := ev.User.ID
		m.mu.Unlock()

		if err := m.loadProfile(context.Background(), userID); err != nil {
			m.deps.Logger.Error().Err(err).Str("user_id", userID).Msg("profile fetch after sign-in event failed")
		}

	case domain.EventTokenRefreshed:
		if m.session != nil && ev.Session != nil && ev.Session.UserID == m.session.UserID {
			m.session = cloneSession(ev.Session)
		}
		m.mu.Unlock()

	default:
		m.mu.Unlock()
	}
}

// applySignedIn installs a sign-in result at its provider sequence. Returns
// false when the result was discarded (manager closed, or an event at a
// strictly newer sequence already superseded it). A result at the applied
// sequence is re-applied idempotently: with an in-process provider the
// SIGNED_IN event for this very operation may land first.
func (m *Manager) applySignedIn(res *ports.SignInResult) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if res.Seq != 0 && res.Seq < m.applied {
		return false
	}
	if res.Seq > m.applied {
		m.applied = res.Seq
	}
	m.profile = nil
	m.user = cloneUser(res.User)
	m.session = cloneSession(res.Session)
	m.state = domain.StateProfileLoading
	return true
}

// loadProfile fetches the profile for userID and installs it only if the
// manager is still live and still on that user.
func (m *Manager) loadProfile(ctx context.Context, userID string) error {
	profile, err := m.deps.Profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrProfileNotFound
		}
		return domain.Servicef("fetch profile", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.user == nil || m.user.ID != userID {
		return nil // superseded while the fetch was in flight
	}
	m.profile = cloneProfile(profile)
	m.state = domain.StateProfileReady
	return nil
}

func (m *Manager) resolveUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.state == domain.StateLoading {
		m.state = domain.StateUnauthenticated
	}
}

func (m *Manager) clearLocalState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.user = nil
	m.profile = nil
	m.session = nil
	m.state = domain.StateUnauthenticated
}

func (m *Manager) audit(ctx context.Context, email string, success bool) {
	err := m.deps.Audit.Record(ctx, ports.LoginAttempt{
		Email:     email,
		IP:        m.deps.IP,
		Success:   success,
		UserAgent: m.deps.UserAgent,
		At:        time.Now().UTC(),
	})
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("email", email).Msg("login audit record failed")
	}
}

func (m *Manager) rememberMe(ctx context.Context, remember bool) {
	if m.deps.Prefs == nil {
		return
	}
	if err := m.deps.Prefs.SetRememberMe(ctx, m.deps.ClientID, remember); err != nil {
		m.deps.Logger.Warn().Err(err).Msg("remember-me preference write failed")
	}
}

func (m *Manager) recordSessionRow(ctx context.Context, res *ports.SignInResult) {
	if m.deps.Sessions == nil {
		return
	}
	err := m.deps.Sessions.Create(ctx, &ports.SessionRecord{
		TokenID:   res.Session.TokenID,
		UserID:    res.User.ID,
		UserAgent: m.deps.UserAgent,
		IP:        m.deps.IP,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: res.Session.ExpiresAt,
	})
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("user_id", res.User.ID).Msg("session row insert failed")
	}
}

func (m *Manager) touchLastLogin(ctx context.Context, userID string) {
	if err := m.deps.Profiles.TouchLastLogin(ctx, userID); err != nil {
		m.deps.Logger.Warn().Err(err).Str("user_id", userID).Msg("last login update failed")
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	clone := *p
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
