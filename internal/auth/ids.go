package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewToken returns an opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// randomBytes fails only if the platform entropy source is broken, which is
// not recoverable.
func randomBytes(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("auth: entropy source unavailable: %v", err))
	}
	return buf
}

// NewSecret returns a base32-free random secret of n bytes, hex encoded.
func NewSecret(n int) string {
	return hex.EncodeToString(randomBytes(n))
}

// NewOTP returns a numeric one-time password of the given number of digits.
func NewOTP(digits int) string {
	const table = "0123456789"
	buf := randomBytes(digits)
	for i := range buf {
		buf[i] = table[int(buf[i])%len(table)]
	}
	return string(buf)
}

// NewKey returns API key material with an optional prefix.
func NewKey(prefix string, n int) string {
	material := base64.RawURLEncoding.EncodeToString(randomBytes(n))
	if prefix == "" {
		return material
	}
	return prefix + "_" + material
}

// HashPassword derives a storable bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash.
func VerifyPassword(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
