package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScryptHasher_RoundTrip(t *testing.T) {
	h := NewScryptHasher()

	first, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	second, err := h.Hash("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes of the same password must differ by salt")
	assert.True(t, h.Verify("Passw0rd!", first))
	assert.True(t, h.Verify("Passw0rd!", second))
	assert.False(t, h.Verify("Passw0rd?", first))
}

func TestScryptHasher_Format(t *testing.T) {
	h := NewScryptHasher()

	hash, err := h.Hash("Passw0rd!")
	require.NoError(t, err)

	key, salt, ok := strings.Cut(hash, ".")
	require.True(t, ok)
	assert.Len(t, key, scryptKeyLen*2)
	assert.Len(t, salt, saltBytes*2)
	assert.NotContains(t, hash, "Passw0rd!")
}

func TestScryptHasher_VerifiesKnownHash(t *testing.T) {
	const stored = "7cfeb9e784a4ed93b27edd0002bdddbf6d821b4aac651fb8d25b42fbe509b07f" +
		"107ba4ad9ef79a847d3d19c3242d4d5722ff08383ba06ab6c8d3b9ddd0e6fb2a" +
		".00112233445566778899aabbccddeeff"

	h := NewScryptHasher()
	assert.True(t, h.Verify("Passw0rd!", stored))
	assert.False(t, h.Verify("passw0rd!", stored))
}

func TestScryptHasher_MalformedHash(t *testing.T) {
	h := NewScryptHasher()
	good, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	key, salt, _ := strings.Cut(good, ".")

	tests := map[string]string{
		"empty":         "",
		"no separator":  key + salt,
		"empty salt":    key + ".",
		"non-hex key":   "zz" + key[2:] + "." + salt,
		"short key":     key[:10] + "." + salt,
		"only dot":      ".",
		"bcrypt format": "$2a$10$abcdefghijklmnopqrstuu",
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, h.Verify("Passw0rd!", stored))
		})
	}
}

func TestScryptHasher_EmptyPassword(t *testing.T) {
	_, err := NewScryptHasher().Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
