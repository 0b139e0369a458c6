// Package gravatar builds avatar URLs for reviewer emails.
package gravatar

import (
	"crypto/md5" //nolint:gosec // gravatar addresses avatars by md5
	"encoding/hex"
	"strings"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Hash returns the gravatar hash of an email: md5 of the trimmed, lower-cased address.
func Hash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// URL returns the avatar URL with an identicon fallback for unknown addresses.
func URL(email string) string {
	return baseURL + Hash(email) + "?d=identicon"
}
