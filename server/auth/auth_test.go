package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("very-secure")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", hash)

	assert.True(t, CheckPasswordHash("very-secure", hash))
	assert.False(t, CheckPasswordHash("not-the-password", hash))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := EncodeSessionToken("42", "tony", "admin", secret)
	assert.Nil(t, err)

	claims, err := DecodeSessionToken(token, secret)
	assert.Nil(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = DecodeSessionToken(token, []byte("wrong-secret"))
	assert.NotNil(t, err)

	_, err = DecodeSessionToken("not-a-token", secret)
	assert.NotNil(t, err)
}
