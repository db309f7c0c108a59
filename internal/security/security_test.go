package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("secret", "user-1", "sess-1", "dev-1", "camera-7", "user", time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "camera-7", claims.CameraNumber)

	_, err = ParseAccessToken(token, "wrong-secret")
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := VerifyPassword("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResourceSignature(t *testing.T) {
	sig := SignResource("secret", "preview", "abc123")

	assert.True(t, VerifyResource("secret", string(sig), "preview", "abc123"))
	assert.False(t, VerifyResource("secret", string(sig), "preview", "other"))
	assert.False(t, VerifyResource("other-secret", string(sig), "preview", "abc123"))
}
