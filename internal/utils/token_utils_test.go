package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils"
)

const testSecret = "test-secret-key-that-is-long-enough"

func TestJWTRoundTrip(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "user@example.com", "ws-1", []string{"ADMIN", "MANAGER"}, testSecret, time.Hour, "billing-test")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ParseAndValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "ws-1", claims.WorkspaceID)
	assert.Equal(t, []string{"ADMIN", "MANAGER"}, claims.Roles)
	assert.Equal(t, "billing-test", claims.Issuer)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "user@example.com", "ws-1", nil, testSecret, time.Hour, "billing-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, "a-different-secret-entirely")
	assert.Error(t, err)
}

func TestJWTExpiredRejected(t *testing.T) {
	token, err := utils.GenerateJWT("user-1", "user@example.com", "ws-1", nil, testSecret, -time.Minute, "billing-test")
	require.NoError(t, err)

	_, err = utils.ParseAndValidateJWT(token, testSecret)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, utils.CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, utils.CheckPasswordHash("wrong-pass", hash))
}
