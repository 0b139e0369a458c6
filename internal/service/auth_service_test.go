package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"micasa/internal/authz"
	"micasa/internal/cache"
	cachemocks "micasa/internal/cache/mocks"
	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	repomocks "micasa/internal/repository/mocks"
	"micasa/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-with-enough-length"

type authFixture struct {
	userRepo   *repomocks.MockUserRepository
	tokenStore *cachemocks.MockRefreshTokenStore
	jwt        *auth.JWTManager
	generator  auth.RefreshTokenGenerator
	hasher     *auth.BcryptHasher
	service    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	ctrl := gomock.NewController(t)
	f := &authFixture{
		userRepo:   repomocks.NewMockUserRepository(ctrl),
		tokenStore: cachemocks.NewMockRefreshTokenStore(ctrl),
		jwt:        auth.NewJWTManager(testSecret, 15*time.Minute),
		generator:  auth.NewRefreshTokenGenerator(),
		hasher:     auth.NewBcryptHasher(bcrypt.MinCost),
	}
	f.service = NewAuthService(AuthServiceConfig{
		UserRepo:        f.userRepo,
		TokenStore:      f.tokenStore,
		JWTManager:      f.jwt,
		TokenGenerator:  f.generator,
		Hasher:          f.hasher,
		Authorizer:      authz.NewLocalAuthorizer(),
		RefreshTokenTTL: 7 * 24 * time.Hour,
		PublicBaseURL:   "http://localhost:8080",
	})
	return f
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a hunter by default and issues tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		var storedFamily string

		f.userRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *models.User) error {
				user.ID = primitive.NewObjectID()
				assert.Equal(t, "ana@example.com", user.Email)
				assert.Equal(t, models.RoleHunter, user.Role)
				assert.NotEmpty(t, user.UID)
				assert.NoError(t, f.hasher.Compare("secret123", user.Password))
				assert.Equal(t, models.DefaultPreferences(), user.Preferences)
				return nil
			})
		f.tokenStore.EXPECT().
			Create(gomock.Any(), gomock.Any(), gomock.Any(), 7*24*time.Hour).
			DoAndReturn(func(_ context.Context, familyID string, data *cache.RefreshTokenData, _ time.Duration) error {
				storedFamily = familyID
				assert.NotEmpty(t, data.UID)
				return nil
			})

		resp, err := f.service.Register(context.Background(), &models.RegisterRequest{
			Email:    "  Ana@Example.com ",
			Password: "secret123",
			Name:     "Ana",
		})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.RefreshToken, "rt_"))
		family, err := f.generator.ExtractFamilyID(resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, storedFamily, family)
		assert.Equal(t, 900, resp.ExpiresIn)
		assert.Equal(t, "/listings", resp.User.HomeRoute)
		assert.Contains(t, resp.User.ProfileImageURL, "gravatar.com")

		claims, err := f.jwt.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.UID, claims.UID)
		assert.Equal(t, "hunter", claims.Role)
	})

	t.Run("accepts a self assignable role", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.tokenStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.service.Register(context.Background(), &models.RegisterRequest{
			Email: "o@example.com", Password: "secret123", Name: "Owner", Role: models.RoleOwner,
		})

		require.NoError(t, err)
		assert.Equal(t, models.RoleOwner, resp.User.Role)
		assert.Equal(t, "/owner/dashboard", resp.User.HomeRoute)
	})

	t.Run("rejects admin", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.service.Register(context.Background(), &models.RegisterRequest{
			Email: "a@example.com", Password: "secret123", Name: "Admin", Role: models.RoleAdmin,
		})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrRoleNotAssignable)
	})

	t.Run("returns error when user creation fails", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.ErrUserAlreadyExists)

		resp, err := f.service.Register(context.Background(), &models.RegisterRequest{
			Email: "a@example.com", Password: "secret123", Name: "Ana",
		})

		assert.Nil(t, resp)
		assert.Equal(t, apperrors.ErrUserAlreadyExists, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	newUser := func(f *authFixture) *models.User {
		hash, err := f.hasher.Hash("secret123")
		require.NoError(t, err)
		return &models.User{UID: "u1", Email: "ana@example.com", Password: hash, Role: models.RoleMover}
	}

	t.Run("successful login", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(newUser(f), nil)
		f.tokenStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.service.Login(context.Background(), &models.LoginRequest{Email: "ANA@example.com", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "/mover/dashboard", resp.User.HomeRoute)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(newUser(f), nil)

		_, err := f.service.Login(context.Background(), &models.LoginRequest{Email: "ana@example.com", Password: "nope"})

		assert.Equal(t, apperrors.ErrInvalidCredentials, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, apperrors.ErrUserNotFound)

		_, err := f.service.Login(context.Background(), &models.LoginRequest{Email: "x@example.com", Password: "secret123"})

		assert.Equal(t, apperrors.ErrInvalidCredentials, err)
	})

	t.Run("database failure is not masked", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		_, err := f.service.Login(context.Background(), &models.LoginRequest{Email: "x@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	issue := func(t *testing.T, f *authFixture) (string, string) {
		token, family, err := f.generator.Generate()
		require.NoError(t, err)
		return token, family
	}

	t.Run("rotates a current token", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)

		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(&cache.RefreshTokenData{
			UID:              "u1",
			CurrentTokenHash: f.generator.Hash(token),
			ExpiresAt:        time.Now().Add(time.Hour),
		}, nil)
		f.userRepo.EXPECT().FindByUID(gomock.Any(), "u1").
			Return(&models.User{UID: "u1", Email: "ana@example.com", Role: models.RoleOwner}, nil)
		f.tokenStore.EXPECT().Rotate(gomock.Any(), family, gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		require.NoError(t, err)
		assert.NotEqual(t, token, resp.RefreshToken)
		newFamily, err := f.generator.ExtractFamilyID(resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, family, newFamily)

		claims, err := f.jwt.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "owner", claims.Role, "role is reloaded on refresh")
	})

	t.Run("reuse of the previous token revokes the family", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)

		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(&cache.RefreshTokenData{
			UID:               "u1",
			CurrentTokenHash:  "someothertokenhash",
			PreviousTokenHash: f.generator.Hash(token),
			ExpiresAt:         time.Now().Add(time.Hour),
		}, nil)
		f.tokenStore.EXPECT().Delete(gomock.Any(), family).Return(nil)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		assert.Equal(t, apperrors.ErrRefreshTokenReused, err)
	})

	t.Run("expired family", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)

		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(&cache.RefreshTokenData{
			UID:              "u1",
			CurrentTokenHash: f.generator.Hash(token),
			ExpiresAt:        time.Now().Add(-time.Minute),
		}, nil)
		f.tokenStore.EXPECT().Delete(gomock.Any(), family).Return(nil)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		assert.Equal(t, apperrors.ErrRefreshTokenExpired, err)
	})

	t.Run("unknown family", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)
		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(nil, nil)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("unknown token in a live family", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)
		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(&cache.RefreshTokenData{
			UID:              "u1",
			CurrentTokenHash: "a",
			ExpiresAt:        time.Now().Add(time.Hour),
		}, nil)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family := issue(t, f)
		f.tokenStore.EXPECT().Get(gomock.Any(), family).Return(&cache.RefreshTokenData{
			UID:              "gone",
			CurrentTokenHash: f.generator.Hash(token),
			ExpiresAt:        time.Now().Add(time.Hour),
		}, nil)
		f.userRepo.EXPECT().FindByUID(gomock.Any(), "gone").Return(nil, apperrors.ErrUserNotFound)
		f.tokenStore.EXPECT().Delete(gomock.Any(), family).Return(nil)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: token})

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.service.Refresh(context.Background(), &models.RefreshRequest{RefreshToken: "garbage"})

		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("deletes the family", func(t *testing.T) {
		f := newAuthFixture(t)
		token, family, err := f.generator.Generate()
		require.NoError(t, err)
		f.tokenStore.EXPECT().Delete(gomock.Any(), family).Return(nil)

		assert.NoError(t, f.service.Logout(context.Background(), &models.LogoutRequest{RefreshToken: token}))
	})

	t.Run("malformed token is a no-op", func(t *testing.T) {
		f := newAuthFixture(t)

		assert.NoError(t, f.service.Logout(context.Background(), &models.LogoutRequest{RefreshToken: "garbage"}))
	})

	t.Run("logout all revokes every family", func(t *testing.T) {
		f := newAuthFixture(t)
		f.tokenStore.EXPECT().DeleteAllByUID(gomock.Any(), "u1").Return(nil)

		assert.NoError(t, f.service.LogoutAll(context.Background(), "u1"))
	})
}
