package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenGenerator_Generate(t *testing.T) {
	gen := NewRefreshTokenGenerator()

	t.Run("generates valid token format", func(t *testing.T) {
		token, familyID, err := gen.Generate()

		require.NoError(t, err)

		parts := strings.Split(token, "_")
		require.Len(t, parts, 3)
		assert.Equal(t, "rt", parts[0])
		assert.Equal(t, familyID, parts[1])
		assert.Len(t, parts[1], 16)
		assert.Len(t, parts[2], 32)
	})

	t.Run("generates unique tokens and families", func(t *testing.T) {
		token1, familyID1, _ := gen.Generate()
		token2, familyID2, _ := gen.Generate()

		assert.NotEqual(t, token1, token2)
		assert.NotEqual(t, familyID1, familyID2)
	})
}

func TestRefreshTokenGenerator_GenerateWithFamily(t *testing.T) {
	gen := NewRefreshTokenGenerator()
	familyID := "1234567890abcdef"

	token1, err := gen.GenerateWithFamily(familyID)
	require.NoError(t, err)
	token2, err := gen.GenerateWithFamily(familyID)
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
	for _, tok := range []string{token1, token2} {
		extracted, err := gen.ExtractFamilyID(tok)
		require.NoError(t, err)
		assert.Equal(t, familyID, extracted)
	}
}

func TestRefreshTokenGenerator_ExtractFamilyID(t *testing.T) {
	gen := NewRefreshTokenGenerator()

	t.Run("extracts family ID from valid token", func(t *testing.T) {
		familyID, err := gen.ExtractFamilyID("rt_1234567890abcdef_fedcba0987654321fedcba0987654321")

		require.NoError(t, err)
		assert.Equal(t, "1234567890abcdef", familyID)
	})

	invalid := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong prefix", "xx_1234567890abcdef_fedcba0987654321fedcba0987654321"},
		{"too few parts", "rt_onlyonepart"},
		{"too many parts", "rt_1234567890abcdef_fedcba_0987654321"},
		{"short family", "rt_short_fedcba0987654321fedcba0987654321"},
		{"non-hex family", "rt_ghij567890abcdef_fedcba0987654321fedcba0987654321"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.ExtractFamilyID(tt.token)

			assert.ErrorIs(t, err, ErrMalformedRefreshToken)
		})
	}
}

func TestRefreshTokenGenerator_Hash(t *testing.T) {
	gen := NewRefreshTokenGenerator()
	token := "rt_1234567890abcdef_fedcba0987654321fedcba0987654321"

	hash := gen.Hash(token)

	assert.Equal(t, hash, gen.Hash(token))
	assert.NotEqual(t, hash, gen.Hash(token+"0"))
	assert.Regexp(t, `^[0-9a-f]{64}$`, hash)
}

func TestRefreshTokenGenerator_CompareHashes(t *testing.T) {
	gen := NewRefreshTokenGenerator()
	hash := gen.Hash("token")

	assert.True(t, gen.CompareHashes(hash, gen.Hash("token")))
	assert.False(t, gen.CompareHashes(hash, gen.Hash("other")))
	assert.False(t, gen.CompareHashes(hash, hash[:len(hash)-1]+"x"))
}
