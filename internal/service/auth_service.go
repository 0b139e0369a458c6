package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"micasa/internal/authz"
	"micasa/internal/cache"
	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	"micasa/internal/repository"
	"micasa/pkg/auth"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AuthService handles authentication business logic.
type AuthService struct {
	userRepo        repository.UserRepository
	tokenStore      cache.RefreshTokenStore
	jwtManager      auth.TokenManager
	tokenGenerator  auth.RefreshTokenGenerator
	hasher          auth.PasswordHasher
	refreshTokenTTL time.Duration
	present         presenter
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	UserRepo        repository.UserRepository
	TokenStore      cache.RefreshTokenStore
	JWTManager      auth.TokenManager
	TokenGenerator  auth.RefreshTokenGenerator
	Hasher          auth.PasswordHasher
	Authorizer      authz.Authorizer
	RefreshTokenTTL time.Duration
	PublicBaseURL   string
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		userRepo:        cfg.UserRepo,
		tokenStore:      cfg.TokenStore,
		jwtManager:      cfg.JWTManager,
		tokenGenerator:  cfg.TokenGenerator,
		hasher:          cfg.Hasher,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		present:         presenter{authorizer: cfg.Authorizer, baseURL: cfg.PublicBaseURL},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account and returns auth tokens. Accounts default to
// the hunter role; admin cannot be chosen at sign up.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleHunter
	}
	if !role.SelfAssignable() {
		return nil, apperrors.ErrRoleNotAssignable
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UID:         uuid.NewString(),
		Email:       normalizeEmail(req.Email),
		Password:    hashedPassword,
		Name:        strings.TrimSpace(req.Name),
		Role:        role,
		Wishlist:    []int64{},
		Preferences: models.DefaultPreferences(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"uid": user.UID, "role": user.Role}).Info("user registered")

	return s.IssueTokens(ctx, user)
}

// Login authenticates a user and returns auth tokens.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(req.Password, user.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.IssueTokens(ctx, user)
}

// Refresh exchanges a refresh token for a new access token and a rotated refresh token.
// Presenting the token that was just rotated out revokes the whole family.
func (s *AuthService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error) {
	familyID, err := s.tokenGenerator.ExtractFamilyID(req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	storedData, err := s.tokenStore.Get(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load refresh token family: %w", err)
	}
	if storedData == nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if time.Now().After(storedData.ExpiresAt) {
		_ = s.tokenStore.Delete(ctx, familyID)
		return nil, apperrors.ErrRefreshTokenExpired
	}

	incomingHash := s.tokenGenerator.Hash(req.RefreshToken)

	if s.tokenGenerator.CompareHashes(incomingHash, storedData.CurrentTokenHash) {
		return s.rotate(ctx, familyID, storedData)
	}

	// One-token lookback for reuse detection
	if storedData.PreviousTokenHash != "" && s.tokenGenerator.CompareHashes(incomingHash, storedData.PreviousTokenHash) {
		_ = s.tokenStore.Delete(ctx, familyID)
		log.WithField("uid", storedData.UID).Warn("refresh token reuse detected, family revoked")
		return nil, apperrors.ErrRefreshTokenReused
	}

	return nil, apperrors.ErrInvalidRefreshToken
}

// rotate reloads the user so role changes reach the new access token.
func (s *AuthService) rotate(ctx context.Context, familyID string, storedData *cache.RefreshTokenData) (*models.RefreshResponse, error) {
	user, err := s.userRepo.FindByUID(ctx, storedData.UID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			_ = s.tokenStore.Delete(ctx, familyID)
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, err
	}

	newRefreshToken, err := s.tokenGenerator.GenerateWithFamily(familyID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateToken(user.UID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.tokenStore.Rotate(ctx, familyID, s.tokenGenerator.Hash(newRefreshToken), s.refreshTokenTTL); err != nil {
		if errors.Is(err, cache.ErrRefreshTokenFamilyNotFound) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, err
	}

	return &models.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(s.jwtManager.Expiry().Seconds()),
	}, nil
}

// Logout revokes the family of a refresh token. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, req *models.LogoutRequest) error {
	familyID, err := s.tokenGenerator.ExtractFamilyID(req.RefreshToken)
	if err != nil {
		return nil
	}
	if err := s.tokenStore.Delete(ctx, familyID); err != nil {
		log.WithError(err).Warn("failed to delete refresh token family")
	}
	return nil
}

// LogoutAll revokes every refresh token issued to a user.
func (s *AuthService) LogoutAll(ctx context.Context, uid string) error {
	return s.tokenStore.DeleteAllByUID(ctx, uid)
}

// IssueTokens creates an access token and a new refresh token family for user.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.UID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	token, familyID, err := s.tokenGenerator.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tokenData := &cache.RefreshTokenData{
		UID:              user.UID,
		CurrentTokenHash: s.tokenGenerator.Hash(token),
		ExpiresAt:        now.Add(s.refreshTokenTTL),
		CreatedAt:        now,
	}
	if err := s.tokenStore.Create(ctx, familyID, tokenData, s.refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: token,
		ExpiresIn:    int(s.jwtManager.Expiry().Seconds()),
		User:         *s.present.user(user),
	}, nil
}
