package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
}

// A cost outside bcrypt's range falls back to the default instead of
// failing registration.
func TestHashPasswordClampsCost(t *testing.T) {
	t.Parallel()

	for _, cost := range []int{-1, 0, 99} {
		hash, err := HashPassword("pw", cost)
		require.NoError(t, err)
		assert.True(t, VerifyPassword(hash, "pw"))
	}
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "pw"))
}
