package services_test

import (
	"testing"

	"msgservice/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSHA256Hasher(t *testing.T) {
	h := services.SHA256Hasher{}

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	// Digest of existing records must stay stable
	assert.Equal(t, "fcf730b6d95236ecd3c9fc2d92d7b6b2bb061514961aec041d6c7a7192f592e4", hash)
	assert.True(t, h.Compare(hash, "secret123"))
	assert.False(t, h.Compare(hash, "secret124"))
	assert.False(t, h.Compare("", "secret123"))
}

func TestBcryptHasher(t *testing.T) {
	h := services.BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, h.Compare(hash, "secret123"))
	assert.False(t, h.Compare(hash, "wrong"))
}

func TestNewPasswordHasher(t *testing.T) {
	for _, name := range []string{"", "sha256", "bcrypt"} {
		h, err := services.NewPasswordHasher(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, h, name)
	}

	_, err := services.NewPasswordHasher("md5")
	assert.Error(t, err)
}
