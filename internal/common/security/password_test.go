package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordAndCheck(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Str0ng&Secure!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash: %s", hash)
	assert.True(t, CheckPasswordHash("Str0ng&Secure!", hash))
	assert.False(t, CheckPasswordHash("Wrong&Passw0rd", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashPasswordSaltIsUnique(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("Str0ng&Secure!")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng&Secure!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("Str0ng&Secure!", first))
	assert.True(t, CheckPasswordHash("Str0ng&Secure!", second))
}

func TestCheckPasswordHashMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"not phc", "plainhash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$ZGlnZXN0"},
		{"truncated", "$argon2id$v=19$m=65536,t=1,p=4"},
		{"bad base64 salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$ZGlnZXN0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, CheckPasswordHash("Str0ng&Secure!", tt.encoded))
		})
	}
}

func TestNewResetToken(t *testing.T) {
	t.Parallel()

	first, err := NewResetToken()
	require.NoError(t, err)
	second, err := NewResetToken()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	// URL-safe, no padding
	assert.NotContains(t, first, "=")
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
}
