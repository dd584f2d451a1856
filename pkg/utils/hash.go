package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashToken returns a bcrypt digest of a refresh token. The digest is an
// audit artifact only and is never sent to the provider.
func HashToken(token string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CompareToken(hashed, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), prehash(token)) == nil
}

// bcrypt rejects inputs over 72 bytes and X refresh tokens can exceed that.
func prehash(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(sum[:]))
}
