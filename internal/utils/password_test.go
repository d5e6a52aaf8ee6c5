package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("P@ssw0rd1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "P@ssw0rd1", hash)
	assert.True(t, CheckPasswordHash("P@ssw0rd1", hash))
	assert.False(t, CheckPasswordHash("P@ssw0rd2", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	again, err := HashPassword("P@ssw0rd1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestCheckPasswordHash_Malformed(t *testing.T) {
	assert.False(t, CheckPasswordHash("P@ssw0rd1", ""))
	assert.False(t, CheckPasswordHash("P@ssw0rd1", "not-a-bcrypt-hash"))
}
