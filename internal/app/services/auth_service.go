// Package services holds the HTTP-facing application services. Screen logic
// lives in the view-models; services cover the flows that happen before a
// gateway session exists, which today is authentication.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/pkg/apperrors"
	"github.com/walkandtalk/walktalk/internal/pkg/auth"
	"github.com/walkandtalk/walktalk/internal/pkg/validation"
)

// AuthService handles registration, sign-in and token refresh
type AuthService struct {
	userRepo   repositories.UserRepository
	tokenRepo  repositories.TokenRepository
	jwtService *auth.JWTService
	provider   auth.IdentityProvider
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	jwtService *auth.JWTService,
	provider auth.IdentityProvider,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		provider:   provider,
		logger:     logger,
	}
}

// Register creates a new account and signs it in
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
	}
	if err := validation.ValidateName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, models.User{
		Email: email,
		Name:  req.Name,
		Mode:  models.UserMode(req.Mode),
	}, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	return s.issueTokens(ctx, user)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := s.userRepo.PasswordHashByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if hash == "" || !auth.CheckPassword(hash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// LoginWithProvider verifies the external identity token, creating the
// account on first use.
func (s *AuthService) LoginWithProvider(ctx context.Context, req dto.ProviderLoginRequest) (*dto.AuthResponse, error) {
	identity, err := s.provider.Verify(ctx, req.ProviderToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderRejected, err)
	}

	user, err := s.userRepo.FindByProviderID(ctx, identity.ProviderID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		created := models.User{
			Email:      strings.ToLower(identity.Email),
			Name:       identity.Name,
			ProviderID: &identity.ProviderID,
			Mode:       models.UserModeWalker,
		}
		if identity.AvatarURL != "" {
			created.AvatarURL = &identity.AvatarURL
		}
		user, err = s.userRepo.Create(ctx, created, "")
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("userID", user.ID).Msg("User created via identity provider")
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a refresh token into a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	userID, expiresAt, revoked, err := s.tokenRepo.TokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, apperrors.ErrTokenNotFound
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(expiresAt) {
		_ = s.tokenRepo.RevokeToken(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	// Single use: the old token dies with the rotation
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token of the user
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}
	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		User: dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Mode:      string(user.Mode),
			AvatarURL: user.AvatarURL,
		},
	}, nil
}
