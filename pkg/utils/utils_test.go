package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher([]byte(testKey))
	require.NoError(t, err)

	sealed, err := c.Encrypt("rtok1")
	require.NoError(t, err)
	require.NotEqual(t, "rtok1", sealed)

	again, err := c.Encrypt("rtok1")
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	require.Equal(t, "rtok1", plain)
}

func TestCipherEmptyPassesThrough(t *testing.T) {
	c, err := NewCipher([]byte(testKey))
	require.NoError(t, err)

	sealed, err := c.Encrypt("")
	require.NoError(t, err)
	require.Empty(t, sealed)

	plain, err := c.Decrypt("")
	require.NoError(t, err)
	require.Empty(t, plain)
}

func TestCipherRejectsGarbage(t *testing.T) {
	c, err := NewCipher([]byte(testKey))
	require.NoError(t, err)

	_, err = c.Decrypt("AAAA")
	require.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = NewCipher([]byte("bad"))
	require.Error(t, err)
}

func TestHashToken(t *testing.T) {
	hashed, err := HashToken("rtok2")
	require.NoError(t, err)
	require.NotEqual(t, "rtok2", hashed)
	require.True(t, CompareToken(hashed, "rtok2"))
	require.False(t, CompareToken(hashed, "rtok1"))

	long := strings.Repeat("r", 120)
	hashed, err = HashToken(long)
	require.NoError(t, err)
	require.True(t, CompareToken(hashed, long))
	require.False(t, CompareToken(hashed, long[:100]))
}

func TestSessionToken(t *testing.T) {
	token, err := GenerateToken(testKey, "acc_1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(testKey, token)
	require.NoError(t, err)
	require.Equal(t, "acc_1", claims.AccountID)

	_, err = ValidateToken("another-secret-another-secret-00", token)
	require.Error(t, err)

	expired, err := GenerateToken(testKey, "acc_1", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(testKey, expired)
	require.Error(t, err)
}
