package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/redact"
	"github.com/phrazzld/academy-api/internal/store"
)

// TokenPair is what a successful login, registration or refresh returns.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Registration carries the fields a new learner supplies.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service authenticates learners and issues tokens.
type Service struct {
	users    store.UserStore
	tokens   JWTService
	verifier PasswordVerifier
	logger   *slog.Logger
}

// NewService creates an authentication Service.
func NewService(users store.UserStore, tokens JWTService, verifier PasswordVerifier, logger *slog.Logger) *Service {
	if users == nil || tokens == nil || verifier == nil {
		panic("auth service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// Register creates a USER account and logs it in.
func (s *Service) Register(ctx context.Context, r Registration) (*domain.User, *TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(r.Username, r.Email, r.Password)
	if err != nil {
		return nil, nil, err
	}
	user.FirstName = strings.TrimSpace(r.FirstName)
	user.LastName = strings.TrimSpace(r.LastName)

	if err := s.users.Create(ctx, user); err != nil {
		if !store.IsDuplicateError(err) {
			log.Error("failed to register user", slog.String("error", err.Error()))
		}
		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, pair, nil
}

// Login checks a username or email and password.
func (s *Service) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	identifier = strings.TrimSpace(identifier)
	lookup := s.users.GetByUsername
	if strings.Contains(identifier, "@") {
		lookup = s.users.GetByEmail
	}

	user, err := lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown user")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		} else {
			log.Error("stored password hash is unusable",
				slog.String("user_id", user.ID.String()), redact.ErrorAttr(err))
		}
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// reloaded so a disabled account or changed role takes effect.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	return s.issue(ctx, user)
}

// Authenticate validates an access token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	return s.tokens.ValidateToken(ctx, accessToken)
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}
	claims, err := s.tokens.ValidateToken(ctx, access)
	if err != nil {
		return nil, fmt.Errorf("issued token failed validation: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: claims.ExpiresAt}, nil
}
