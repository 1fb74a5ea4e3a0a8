package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"radblog/internal/config"
	apperrors "radblog/internal/errors"
	"radblog/internal/ids"
	"radblog/internal/models"
	"radblog/internal/repository"
	"radblog/internal/security"
)

// TokenPair is what login hands the client. Both tokens are issued
// together; the client stores and clears them together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AuthService covers registration, login and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, identity models.Identity) (models.User, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users repository.UserRepository, cfg *config.AppConfig, log zerolog.Logger) AuthService {
	return &authService{
		users: users,
		cfg:   cfg,
		log:   log,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return models.User{}, apperrors.NewValidation("email", "required")
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	if _, err := s.users.FindByEmail(storeCtx, email); err == nil {
		return models.User{}, apperrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperrors.Store(err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Roles:        models.RoleSet{models.RoleUser},
	}

	if err := s.users.Create(storeCtx, user); err != nil {
		return models.User{}, apperrors.Store(err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	user, err := s.users.FindByEmail(storeCtx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, apperrors.ErrInvalidCredentials
		}
		return TokenPair{}, apperrors.Store(err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return TokenPair{}, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new access token. Roles are
// re-read from the store so the fresh token reflects the current role set.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := security.ParseRefreshToken(refreshToken, s.cfg.Security.JWTRefreshSecret)
	if err != nil {
		return "", apperrors.ErrUnauthenticated
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	user, err := s.users.GetByID(storeCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperrors.ErrUnauthenticated
		}
		return "", apperrors.Store(err)
	}

	accessToken, err := security.IssueAccessToken(s.cfg.Security.JWTAccessSecret, user, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

func (s *authService) Me(ctx context.Context, identity models.Identity) (models.User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeouts.Store)
	defer cancel()

	user, err := s.users.GetByID(storeCtx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperrors.ErrNotFound
		}
		return models.User{}, apperrors.Store(err)
	}
	return user, nil
}

func (s *authService) issueTokens(user models.User) (TokenPair, error) {
	accessToken, err := security.IssueAccessToken(s.cfg.Security.JWTAccessSecret, user, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := security.IssueRefreshToken(s.cfg.Security.JWTRefreshSecret, user.ID, s.cfg.Security.JWTRefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
