// Package provider adapts the in-process auth service to the per-client
// AuthProvider boundary consumed by the session manager. Each Local instance
// belongs to one client and persists that client's access token so a session
// survives restarts.
package provider

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
	"github.com/Jooy-edu/jooy-auth/internal/core/service"
)

type Local struct {
	svc      *service.AuthService
	tokens   ports.TokenStore
	clientID string
	logger   zerolog.Logger
}

func NewLocal(svc *service.AuthService, tokens ports.TokenStore, clientID string, logger zerolog.Logger) *Local {
	return &Local{svc: svc, tokens: tokens, clientID: clientID, logger: logger}
}

func (l *Local) SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error) {
	return l.svc.SignUp(ctx, input)
}

func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	res, err := l.svc.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	l.saveToken(ctx, res.Session.AccessToken)
	return res, nil
}

// CurrentSession restores the persisted token, if any, and validates it with
// the service. A dead token is dropped from the store and reported as no
// session rather than an error.
func (l *Local) CurrentSession(ctx context.Context) (*ports.SignInResult, error) {
	token, err := l.tokens.Load(ctx, l.clientID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	res, err := l.svc.ValidateAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			l.dropToken(ctx)
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (l *Local) SignOut(ctx context.Context, sess *domain.Session) error {
	l.dropToken(ctx)
	return l.svc.SignOut(ctx, sess)
}

func (l *Local) SendPasswordReset(ctx context.Context, email string) error {
	return l.svc.SendPasswordReset(ctx, email)
}

func (l *Local) ExchangeRecoveryToken(ctx context.Context, token string) (*ports.SignInResult, error) {
	return l.svc.ExchangeRecoveryToken(ctx, token)
}

func (l *Local) UpdatePassword(ctx context.Context, sess *domain.Session, newPassword string) error {
	return l.svc.UpdatePassword(ctx, sess, newPassword)
}

func (l *Local) Subscribe(fn func(domain.AuthEvent)) ports.Unsubscribe {
	return l.svc.Subscribe(fn)
}

func (l *Local) saveToken(ctx context.Context, token string) {
	if err := l.tokens.Save(ctx, l.clientID, token); err != nil {
		l.logger.Warn().Err(err).Msg("token persist failed")
	}
}

func (l *Local) dropToken(ctx context.Context) {
	if err := l.tokens.Delete(ctx, l.clientID); err != nil {
		l.logger.Warn().Err(err).Msg("token drop failed")
	}
}
