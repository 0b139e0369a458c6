package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUID = "0b6c1f3e-6d8e-4a43-a3b5-2b1f0c9d7e21"

func TestNewJWTManager(t *testing.T) {
	t.Run("creates manager with valid config", func(t *testing.T) {
		manager := NewJWTManager("testsecret", 15*time.Minute)

		assert.NotNil(t, manager)
		assert.Equal(t, 15*time.Minute, manager.Expiry())
	})
}

func TestJWTManager_GenerateToken(t *testing.T) {
	manager := NewJWTManager("testsecret123", 15*time.Minute)

	t.Run("generates valid token", func(t *testing.T) {
		token, err := manager.GenerateToken(testUID, "ana@example.com", "hunter")

		require.NoError(t, err)
		// Token should be a valid JWT format (3 parts separated by dots)
		assert.Regexp(t, `^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`, token)
	})

	t.Run("token carries uid, email and role", func(t *testing.T) {
		token, _ := manager.GenerateToken(testUID, "owner@example.com", "owner")
		claims, err := manager.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, testUID, claims.UID)
		assert.Equal(t, testUID, claims.Subject)
		assert.Equal(t, "owner@example.com", claims.Email)
		assert.Equal(t, "owner", claims.Role)
		assert.Equal(t, "micasa", claims.Issuer)
	})
}

func TestJWTManager_ValidateToken(t *testing.T) {
	manager := NewJWTManager("testsecret123", 15*time.Minute)

	t.Run("returns error for expired token", func(t *testing.T) {
		shortManager := NewJWTManager("testsecret123", 1*time.Millisecond)
		token, _ := shortManager.GenerateToken(testUID, "a@example.com", "hunter")

		time.Sleep(10 * time.Millisecond)

		claims, err := shortManager.ValidateToken(token)

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("returns error for wrong secret", func(t *testing.T) {
		other := NewJWTManager("secret2", 15*time.Minute)

		token, _ := other.GenerateToken(testUID, "a@example.com", "hunter")
		claims, err := manager.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects unsigned tokens", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UID:  testUID,
			Role: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "micasa",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		claims, err := manager.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects tokens from another issuer", func(t *testing.T) {
		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UID: testUID,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token, err := foreign.SignedString([]byte("testsecret123"))
		require.NoError(t, err)

		claims, err := manager.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("returns error for malformed input", func(t *testing.T) {
		for _, input := range []string{"", "not.a.valid.token", "abc"} {
			claims, err := manager.ValidateToken(input)

			assert.Error(t, err, input)
			assert.Nil(t, claims)
		}
	})

	t.Run("returns error for tampered token", func(t *testing.T) {
		token, _ := manager.GenerateToken(testUID, "a@example.com", "hunter")
		tamperedToken := token[:len(token)-5] + "XXXXX"

		claims, err := manager.ValidateToken(tamperedToken)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("sets expiry and issued at", func(t *testing.T) {
		expiry := 30 * time.Minute
		m := NewJWTManager("secret", expiry)
		before := time.Now()

		token, _ := m.GenerateToken(testUID, "a@example.com", "mover")
		claims, err := m.ValidateToken(token)

		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(expiry), claims.ExpiresAt.Time, 2*time.Second)
		assert.WithinDuration(t, before, claims.IssuedAt.Time, 2*time.Second)
	})
}

func BenchmarkJWTManager_ValidateToken(b *testing.B) {
	manager := NewJWTManager("benchmarksecret", 15*time.Minute)
	token, _ := manager.GenerateToken(testUID, "bench@example.com", "hunter")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.ValidateToken(token)
	}
}
