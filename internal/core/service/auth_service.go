package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// AuthService implements the auth platform: credential registration and
// exchange, token issuance, verification and recovery flows, and the
// session-change event feed. It is the in-process stand-in for what the
// original product delegated to a hosted service.
type AuthService struct {
	creds    ports.CredentialRepository
	profiles ports.ProfileRepository
	sessions ports.SessionRepository
	limiter  ports.LoginRateLimiter
	audit    ports.LoginAuditor
	mailer   ports.Mailer
	tokens   *TokenIssuer
	hub      *Hub
	logger   zerolog.Logger

	baseURL       string
	signupCredits int64
}

// AuthServiceDeps bundles the collaborators for NewAuthService.
type AuthServiceDeps struct {
	Credentials ports.CredentialRepository
	Profiles    ports.ProfileRepository
	Sessions    ports.SessionRepository
	Limiter     ports.LoginRateLimiter
	Audit       ports.LoginAuditor
	Mailer      ports.Mailer
	Tokens      *TokenIssuer
	Logger      zerolog.Logger

	// BaseURL prefixes verification and recovery links.
	BaseURL string
	// SignupCredits seeds the credit balance of new profiles.
	SignupCredits int64
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		creds:         deps.Credentials,
		profiles:      deps.Profiles,
		sessions:      deps.Sessions,
		limiter:       deps.Limiter,
		audit:         deps.Audit,
		mailer:        deps.Mailer,
		tokens:        deps.Tokens,
		hub:           NewHub(),
		logger:        deps.Logger,
		baseURL:       deps.BaseURL,
		signupCredits: deps.SignupCredits,
	}
}

// Subscribe registers a session-change listener on the service's event hub.
func (s *AuthService) Subscribe(fn func(domain.AuthEvent)) ports.Unsubscribe {
	return s.hub.Subscribe(fn)
}

// SignUp registers credentials and the matching profile row, then dispatches
// a verification link. No session is established. The final uniqueness
// authority is the credential store's unique index, not the pre-check.
func (s *AuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	if input.Username != "" {
		switch _, err := s.profiles.FindByUsername(ctx, input.Username); {
		case err == nil:
			return nil, domain.ErrUsernameTaken
		case errors.Is(err, domain.ErrProfileNotFound):
		default:
			return nil, domain.Servicef("username check", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Servicef("hash password", err)
	}

	now := time.Now().UTC()
	created, err := s.insertAccount(ctx, &ports.Credential{
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, &domain.Profile{
		FullName:         input.FullName,
		Username:         input.Username,
		Role:             domain.RoleUser,
		IsActive:         true,
		CreditsRemaining: s.signupCredits,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, created)

	s.logger.Info().Str("user_id", created.UserID).Str("email", created.Email).Msg("user registered")
	return ports.UserFromCredential(created), nil
}

// SignInWithPassword performs the bare credential exchange and publishes the
// SIGNED_IN event. Rate limiting and auditing belong to the callers that own
// an attempt context (Login here, the client-side manager on its side).
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Indistinguishable from a wrong password on purpose.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Servicef("find credentials", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.checkActive(ctx, cred.UserID); err != nil {
		return nil, err
	}
	return s.establishSession(cred)
}

// SignInExternal establishes a session for an identity asserted by a trusted
// OAuth provider, creating the account on first sign-in. Accounts created
// this way carry no usable password until one is set through recovery.
func (s *AuthService) SignInExternal(ctx context.Context, email, fullName, avatarURL string) (*ports.SignInResult, error) {
	cred, err := s.creds.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		now := time.Now().UTC()
		cred, err = s.insertAccount(ctx, &ports.Credential{
			Email:         email,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, &domain.Profile{
			FullName:         fullName,
			AvatarURL:        avatarURL,
			Role:             domain.RoleUser,
			IsActive:         true,
			CreditsRemaining: s.signupCredits,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", cred.UserID).Str("email", cred.Email).Msg("user registered via oauth")
	default:
		return nil, domain.Servicef("find credentials", err)
	}

	if err := s.checkActive(ctx, cred.UserID); err != nil {
		return nil, err
	}
	return s.establishSession(cred)
}

// LoginInput carries the full attempt context for the server-side flow.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// Login is the full server-side sign-in flow: rate-limit predicate first
// (deny means no credential call), credential exchange, audit record either
// way, then session-row and last-login bookkeeping.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*ports.SignInResult, error) {
	allowed, err := s.limiter.Allow(ctx, input.Email, input.IP)
	if err != nil {
		return nil, domain.Servicef("rate limit check", err)
	}
	if !allowed {
		return nil, domain.ErrRateLimited
	}

	res, signInErr := s.SignInWithPassword(ctx, input.Email, input.Password)
	s.recordAttempt(ctx, input, signInErr == nil)

	if signInErr != nil {
		if err := s.limiter.RecordFailure(ctx, input.Email, input.IP); err != nil {
			s.logger.Warn().Err(err).Str("email", input.Email).Msg("rate limit bookkeeping failed")
		}
		return nil, signInErr
	}

	s.recordSessionRow(ctx, res, input)
	if err := s.profiles.TouchLastLogin(ctx, res.User.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", res.User.ID).Msg("last login update failed")
	}
	return res, nil
}

// ValidateAccessToken resolves a bearer token into a live session. Used for
// session restore and request authentication.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*ports.SignInResult, error) {
	claims, err := s.tokens.Parse(token, purposeAccess)
	if err != nil {
		return nil, err
	}
	cred, err := s.creds.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionExpired
		}
		return nil, domain.Servicef("find credentials", err)
	}
	return &ports.SignInResult{
		Session: &domain.Session{
			AccessToken: token,
			TokenID:     claims.TokenID,
			UserID:      cred.UserID,
			ExpiresAt:   claims.ExpiresAt,
		},
		User: ports.UserFromCredential(cred),
	}, nil
}

// Refresh exchanges a live session for a fresh token and publishes
// TOKEN_REFRESHED.
func (s *AuthService) Refresh(ctx context.Context, sess *domain.Session) (*ports.SignInResult, error) {
	if sess == nil || sess.Expired(time.Now().UTC()) {
		return nil, domain.ErrSessionExpired
	}
	claims, err := s.tokens.Parse(sess.AccessToken, purposeAccess)
	if err != nil {
		return nil, err
	}
	cred, err := s.creds.FindByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrSessionExpired
	}

	token, tokenID, expiresAt, err := s.tokens.IssueAccess(cred.UserID, cred.Email)
	if err != nil {
		return nil, domain.Servicef("issue token", err)
	}
	next := &domain.Session{
		AccessToken: token,
		TokenID:     tokenID,
		UserID:      cred.UserID,
		ExpiresAt:   expiresAt,
	}
	user := ports.UserFromCredential(cred)
	seq := s.hub.Publish(domain.EventTokenRefreshed, next, user)
	return &ports.SignInResult{Session: next, User: user, Seq: seq}, nil
}

// SignOut deactivates the user's session rows (best-effort) and publishes
// SIGNED_OUT.
func (s *AuthService) SignOut(ctx context.Context, sess *domain.Session) error {
	if sess != nil && s.sessions != nil {
		if err := s.sessions.MarkInactive(ctx, sess.UserID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("session row deactivation failed")
		}
	}
	s.hub.Publish(domain.EventSignedOut, nil, nil)
	return nil
}

// SendPasswordReset dispatches a recovery link. Unknown addresses return
// domain.ErrUserNotFound; the HTTP layer and the client-side manager both
// normalize that case to a success-shaped response.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Servicef("find credentials", err)
	}

	token, err := s.tokens.IssueRecovery(cred.UserID, cred.Email)
	if err != nil {
		return domain.Servicef("issue recovery token", err)
	}
	link := s.baseURL + "/auth/reset-password?token=" + token
	if err := s.mailer.SendPasswordReset(ctx, cred.Email, link); err != nil {
		return domain.Servicef("send reset mail", err)
	}
	s.logger.Info().Str("user_id", cred.UserID).Msg("password reset dispatched")
	return nil
}

// ExchangeRecoveryToken trades a reset-link token for a recovery session.
// The session can only be used with UpdatePassword.
func (s *AuthService) ExchangeRecoveryToken(ctx context.Context, token string) (*ports.SignInResult, error) {
	claims, err := s.tokens.Parse(token, purposeRecovery)
	if err != nil {
		return nil, err
	}
	cred, err := s.creds.FindByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrSessionExpired
	}

	sess := &domain.Session{
		AccessToken: token,
		TokenID:     claims.TokenID,
		UserID:      cred.UserID,
		ExpiresAt:   claims.ExpiresAt,
		Recovery:    true,
	}
	user := ports.UserFromCredential(cred)
	seq := s.hub.Publish(domain.EventSignedIn, sess, user)
	return &ports.SignInResult{Session: sess, User: user, Seq: seq}, nil
}

// UpdatePassword sets a new password for the session's user. Accepts either
// a normal session or a recovery session; anything else fails with
// ErrSessionExpired.
func (s *AuthService) UpdatePassword(ctx context.Context, sess *domain.Session, newPassword string) error {
	if sess == nil || sess.Expired(time.Now().UTC()) {
		return domain.ErrSessionExpired
	}
	purpose := purposeAccess
	if sess.Recovery {
		purpose = purposeRecovery
	}
	claims, err := s.tokens.Parse(sess.AccessToken, purpose)
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.Servicef("hash password", err)
	}
	if err := s.creds.SetPasswordHash(ctx, claims.UserID, string(hash)); err != nil {
		return domain.Servicef("store password", err)
	}

	// Old sessions are dead after a password change.
	if s.sessions != nil {
		if err := s.sessions.MarkInactive(ctx, claims.UserID); err != nil {
			s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("session row deactivation failed")
		}
	}
	s.logger.Info().Str("user_id", claims.UserID).Msg("password updated")
	return nil
}

// VerifyEmail flips the verified flag for a valid verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, purposeVerify)
	if err != nil {
		return err
	}
	if err := s.creds.SetVerified(ctx, claims.UserID); err != nil {
		return domain.Servicef("mark verified", err)
	}
	s.logger.Info().Str("user_id", claims.UserID).Msg("email verified")
	return nil
}

// insertAccount writes the credential/profile pair. When the profile insert
// loses a uniqueness race, the credential is rolled back so the email stays
// usable on retry instead of pointing at a half-created account.
func (s *AuthService) insertAccount(ctx context.Context, cred *ports.Credential, profile *domain.Profile) (*ports.Credential, error) {
	created, err := s.creds.Create(ctx, cred)
	if err != nil {
		return nil, domain.Servicef("create credentials", err)
	}

	profile.ID = created.UserID
	profile.Email = created.Email
	if err := s.profiles.Create(ctx, profile); err != nil {
		if delErr := s.creds.Delete(ctx, created.UserID); delErr != nil {
			s.logger.Error().Err(delErr).Str("user_id", created.UserID).Msg("credential rollback failed")
		}
		return nil, domain.Servicef("create profile", err)
	}
	return created, nil
}

// checkActive gates session establishment on the profile row. A missing row
// is a half-created account and is refused like a bad password; any other
// lookup failure surfaces rather than skipping the suspension check.
func (s *AuthService) checkActive(ctx context.Context, userID string) error {
	profile, err := s.profiles.FindByID(ctx, userID)
	switch {
	case err == nil:
		if !profile.IsActive {
			return domain.ErrAccountSuspended
		}
		return nil
	case errors.Is(err, domain.ErrProfileNotFound):
		return domain.ErrInvalidCredentials
	default:
		return domain.Servicef("load profile", err)
	}
}

func (s *AuthService) establishSession(cred *ports.Credential) (*ports.SignInResult, error) {
	token, tokenID, expiresAt, err := s.tokens.IssueAccess(cred.UserID, cred.Email)
	if err != nil {
		return nil, domain.Servicef("issue token", err)
	}
	sess := &domain.Session{
		AccessToken: token,
		TokenID:     tokenID,
		UserID:      cred.UserID,
		ExpiresAt:   expiresAt,
	}
	user := ports.UserFromCredential(cred)
	seq := s.hub.Publish(domain.EventSignedIn, sess, user)
	return &ports.SignInResult{Session: sess, User: user, Seq: seq}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, input LoginInput, success bool) {
	err := s.audit.Record(ctx, ports.LoginAttempt{
		Email:     input.Email,
		IP:        input.IP,
		Success:   success,
		UserAgent: input.UserAgent,
		At:        time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("email", input.Email).Msg("login audit record failed")
	}
}

func (s *AuthService) recordSessionRow(ctx context.Context, res *ports.SignInResult, input LoginInput) {
	if s.sessions == nil {
		return
	}
	err := s.sessions.Create(ctx, &ports.SessionRecord{
		TokenID:   res.Session.TokenID,
		UserID:    res.User.ID,
		UserAgent: input.UserAgent,
		IP:        input.IP,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: res.Session.ExpiresAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", res.User.ID).Msg("session row insert failed")
	}
}

func (s *AuthService) sendVerification(ctx context.Context, cred *ports.Credential) {
	token, err := s.tokens.IssueVerification(cred.UserID, cred.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", cred.UserID).Msg("verification token issue failed")
		return
	}
	link := s.baseURL + "/auth/verify?token=" + token
	if err := s.mailer.SendVerification(ctx, cred.Email, link); err != nil {
		s.logger.Error().Err(err).Str("user_id", cred.UserID).Msg("verification mail dispatch failed")
	}
}
