package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/client/cache"
	"github.com/dmitrijs2005/chirp/internal/client/client"
	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/dmitrijs2005/chirp/internal/client/notify"
	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

// MinPasswordLength is the shortest password Signup accepts.
const MinPasswordLength = 4

const (
	noticeLoggedIn     = "Logged in"
	noticeLoginFailed  = "Login failed: check your username and password"
	noticeLoggedOut    = "Logged out"
	noticeSignedUp     = "Signed up, please log in"
	noticeSignupFailed = "Signup failed: the username is taken or the server refused"
)

// AuthService manages the session. Cached data always belongs to the
// current session user, so every session change empties the cache.
type AuthService struct {
	api      *client.API
	cache    *cache.QueryCache
	notifier notify.Notifier
	logger   logging.Logger
}

func NewAuthService(d Deps) *AuthService {
	d = d.withDefaults()
	return &AuthService{
		api:      d.API,
		cache:    d.Cache,
		notifier: d.Notifier,
		logger:   d.Logger.With("service", "auth"),
	}
}

// Login opens a session. The server sets the session and CSRF cookies.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if err := s.api.Auth.Login(ctx, username, password); err != nil {
		s.notifier.Error(ctx, noticeLoginFailed, err)
		return fmt.Errorf("login error: %w", err)
	}
	s.cache.Remove(cache.Key{})
	s.logger.Info(ctx, "logged in", "username", username)
	s.notifier.Success(ctx, noticeLoggedIn)
	return nil
}

// Logout closes the session. The cache is emptied even when the server
// call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.api.Auth.Logout(ctx)
	s.cache.Remove(cache.Key{})
	if err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	s.notifier.Success(ctx, noticeLoggedOut)
	return nil
}

// Signup creates an account. It does not log in.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	u, err := s.api.Users.Signup(ctx, models.UserSignupRequest{Username: username, Password: password})
	if err != nil {
		s.notifier.Error(ctx, noticeSignupFailed, err)
		return nil, fmt.Errorf("signup error: %w", err)
	}
	s.notifier.Success(ctx, noticeSignedUp)
	return u, nil
}

func (s *AuthService) Sessions(ctx context.Context) ([]models.AuthSession, error) {
	return s.api.Auth.Sessions(ctx)
}
