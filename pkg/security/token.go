package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SecretSize is the amount of random bytes behind every bearer and reset token
const SecretSize = 32

// GenerateSecret returns a random base64url secret of SecretSize bytes and its SHA-256 hex hash
func GenerateSecret() (secret string, hashHex string, err error) {
	b, err := genRandByt(SecretSize)
	if err != nil {
		return "", "", err
	}

	secret = base64.RawURLEncoding.EncodeToString(b)
	return secret, HashSecret(secret), nil
}

// HashSecret returns SHA-256 hex of the secret
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// EqualHash compares two hex hashes in constant time
func EqualHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// LinkSigner derives the expiry-less hash used in email verification links
type LinkSigner struct {
	key []byte
}

func NewLinkSigner(key string) *LinkSigner {
	return &LinkSigner{key: []byte(key)}
}

// Sign returns hex HMAC-SHA256 over the user ID and the normalized email
func (s *LinkSigner) Sign(userID, email string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(userID))
	m.Write([]byte{'|'})
	m.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(m.Sum(nil))
}

// Verify recomputes the signature and compares it with supplied in constant time
func (s *LinkSigner) Verify(userID, email, supplied string) bool {
	return hmac.Equal([]byte(s.Sign(userID, email)), []byte(supplied))
}

// RandomString returns a random base64url string of n bytes of entropy
func RandomString(n uint32) (string, error) {
	b, err := genRandByt(n)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
