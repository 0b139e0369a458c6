package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Refresh tokens look like rt_<family>_<secret>: family is 8 random bytes and
// secret 16 random bytes, both hex encoded.
const (
	refreshTokenPrefix = "rt"
	familyBytes        = 8
	secretBytes        = 16
)

// ErrMalformedRefreshToken is returned when a token does not follow the rt_<family>_<secret> layout.
var ErrMalformedRefreshToken = errors.New("malformed refresh token")

// RefreshTokenGenerator generates and validates refresh tokens.
type RefreshTokenGenerator interface {
	// Generate creates a new refresh token that starts a new family.
	Generate() (token string, familyID string, err error)
	// GenerateWithFamily creates the next token of an existing family.
	GenerateWithFamily(familyID string) (string, error)
	// ExtractFamilyID parses the family ID from a token.
	ExtractFamilyID(token string) (string, error)
	// Hash returns the SHA-256 hash of a token.
	Hash(token string) string
	// CompareHashes compares two token hashes in constant time.
	CompareHashes(hash1, hash2 string) bool
}

type refreshTokenGenerator struct{}

// NewRefreshTokenGenerator creates a new RefreshTokenGenerator.
func NewRefreshTokenGenerator() RefreshTokenGenerator {
	return &refreshTokenGenerator{}
}

func (g *refreshTokenGenerator) Generate() (string, string, error) {
	familyID, err := randomHex(familyBytes)
	if err != nil {
		return "", "", fmt.Errorf("generate family id: %w", err)
	}
	token, err := g.GenerateWithFamily(familyID)
	if err != nil {
		return "", "", err
	}
	return token, familyID, nil
}

func (g *refreshTokenGenerator) GenerateWithFamily(familyID string) (string, error) {
	secret, err := randomHex(secretBytes)
	if err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return strings.Join([]string{refreshTokenPrefix, familyID, secret}, "_"), nil
}

func (g *refreshTokenGenerator) ExtractFamilyID(token string) (string, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[0] != refreshTokenPrefix {
		return "", ErrMalformedRefreshToken
	}
	family := parts[1]
	if len(family) != familyBytes*2 {
		return "", fmt.Errorf("%w: family id must be %d characters", ErrMalformedRefreshToken, familyBytes*2)
	}
	if _, err := hex.DecodeString(family); err != nil {
		return "", fmt.Errorf("%w: family id must be hex", ErrMalformedRefreshToken)
	}
	return family, nil
}

func (g *refreshTokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (g *refreshTokenGenerator) CompareHashes(hash1, hash2 string) bool {
	return subtle.ConstantTimeCompare([]byte(hash1), []byte(hash2)) == 1
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
