package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherIsDeterministic(t *testing.T) {
	for _, algorithm := range Algorithms() {
		t.Run(algorithm, func(t *testing.T) {
			h, err := NewHasher(algorithm, "pepper")
			require.NoError(t, err)

			first := h.Hash("qwerty")
			assert.Equal(t, first, h.Hash("qwerty"))
			assert.NotEqual(t, first, h.Hash("qwertz"))
			assert.True(t, h.Verify("qwerty", first))
			assert.False(t, h.Verify("qwertz", first))
		})
	}
}

func TestHasherDependsOnSecret(t *testing.T) {
	a, err := NewHasher("sha256", "one")
	require.NoError(t, err)
	b, err := NewHasher("sha256", "two")
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash("qwerty"), b.Hash("qwerty"))
}

func TestHasherKnownDigest(t *testing.T) {
	h, err := NewHasher("sha256", "key")
	require.NoError(t, err)

	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		h.Hash("The quick brown fox jumps over the lazy dog"))
}

func TestNewHasherRejectsBadInput(t *testing.T) {
	_, err := NewHasher("md5", "secret")
	assert.Error(t, err)

	_, err = NewHasher("sha256", "")
	assert.Error(t, err)
}
