package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tasklist/tasklist-api/internal/crypto"
	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/repository"
	"github.com/tasklist/tasklist-api/internal/validate"
)

const userLookupTimeout = 5 * time.Second

// RevocationStore is the denylist consulted for every token. It lives
// outside the process (Redis or SQL) so revocations survive restarts and
// are shared between instances.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Session is an authenticated request's user and the token that proved it.
type Session struct {
	User   model.User
	Claims *crypto.Claims
}

// AuthService handles authentication business logic: issuing, validating,
// refreshing and revoking bearer tokens.
type AuthService struct {
	users      *repository.UserRepository
	tokens     *crypto.TokenIssuer
	revoked    RevocationStore
	refreshTTL time.Duration

	sf singleflight.Group
}

// NewAuthService creates a new AuthService. refreshTTL bounds how long after
// issue an expired token may still be exchanged for a new one.
func NewAuthService(users *repository.UserRepository, tokens *crypto.TokenIssuer, revoked RevocationStore, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		revoked:    revoked,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return model.AuthResult{}, err
	}

	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return model.AuthResult{}, err
	}
	if taken {
		return model.AuthResult{}, errEmailTaken()
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResult{}, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResult{}, errEmailTaken()
		}
		return model.AuthResult{}, err
	}

	return s.issue(*user)
}

func errEmailTaken() error {
	return validate.Field("email", "The email has already been taken.")
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return model.AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !match {
		return model.AuthResult{}, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.Password) {
		if hash, err := crypto.HashPassword(req.Password); err == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	return s.issue(*user)
}

// Authenticate validates a bearer token and resolves its user. Failures are
// classified in order: missing, expired, invalid (including revoked), then
// user not found. It never writes.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrTokenMissing
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return Session{}, ErrTokenExpired
		}
		return Session{}, ErrTokenInvalid
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return Session{}, err
	}

	user, err := s.lookupUser(ctx, claims.UserID)
	if err != nil {
		return Session{}, err
	}

	return Session{User: user, Claims: claims}, nil
}

// Refresh exchanges a valid token, or one that expired less than the refresh
// window after it was issued, for a new token. The old token is revoked.
func (s *AuthService) Refresh(ctx context.Context, token string) (model.AuthResult, error) {
	if token == "" {
		return model.AuthResult{}, ErrTokenMissing
	}

	claims, err := s.tokens.Parse(token)
	switch {
	case errors.Is(err, crypto.ErrTokenExpired):
		if !s.tokens.Now().Before(s.refreshDeadline(claims)) {
			return model.AuthResult{}, ErrTokenExpired
		}
	case err != nil:
		return model.AuthResult{}, ErrTokenInvalid
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return model.AuthResult{}, err
	}

	user, err := s.lookupUser(ctx, claims.UserID)
	if err != nil {
		return model.AuthResult{}, err
	}

	if err := s.revoked.Revoke(ctx, claims.ID, s.refreshDeadline(claims)); err != nil {
		return model.AuthResult{}, fmt.Errorf("revoking refreshed token: %w", err)
	}

	return s.issue(user)
}

// Logout revokes the token that authenticated the session.
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	if sess.Claims == nil {
		return ErrTokenMissing
	}
	if err := s.revoked.Revoke(ctx, sess.Claims.ID, s.refreshDeadline(sess.Claims)); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func (s *AuthService) issue(user model.User) (model.AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// refreshDeadline is the last moment a token can be used for anything: its
// expiry or the end of its refresh window, whichever is later.
func (s *AuthService) refreshDeadline(claims *crypto.Claims) time.Time {
	deadline := claims.ExpiresAt.Time
	if claims.IssuedAt != nil {
		if grace := claims.IssuedAt.Add(s.refreshTTL); grace.After(deadline) {
			deadline = grace
		}
	}
	return deadline
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *crypto.Claims) error {
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return ErrTokenInvalid
	}
	return nil
}

// lookupUser collapses concurrent lookups of the same user into one query.
// The shared query is detached from any single caller, so one request
// going away does not fail the others waiting on it.
func (s *AuthService) lookupUser(ctx context.Context, id string) (model.User, error) {
	ch := s.sf.DoChan("user:"+id, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), userLookupTimeout)
		defer cancel()
		return s.users.GetByID(qctx, id)
	})

	select {
	case <-ctx.Done():
		return model.User{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, repository.ErrUserNotFound) {
				return model.User{}, ErrUserNotFound
			}
			return model.User{}, res.Err
		}
		return *res.Val.(*model.User), nil
	}
}
