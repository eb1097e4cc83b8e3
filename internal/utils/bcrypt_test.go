package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", first)
	assert.NotEqual(t, first, second, "each hash carries its own salt")
}

func TestCheckPasswordHash(t *testing.T) {
	hashed, err := HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("password123", hashed))
	assert.False(t, CheckPasswordHash("Password123", hashed))
	assert.False(t, CheckPasswordHash("password123", "invalidhash"))
}
