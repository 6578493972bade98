package jwt_test

import (
	"testing"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/auth/jwt"
	"github.com/smartstorage/smartstorage-backend/pkg/config"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(expiry time.Duration) *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: expiry,
		Issuer:       "smartstorage-test",
	})
}

func TestManager_GenerateAndValidate(t *testing.T) {
	manager := newManager(time.Hour)

	token, expiresAt, err := manager.GenerateToken(&jwt.UserInfo{
		ID:    "user-1",
		Email: "operator@example.com",
		Name:  "Operator",
		Role:  "operator",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "operator@example.com", claims.Email)
	assert.Equal(t, "Operator", claims.Name)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "smartstorage-test", claims.Issuer)
}

func TestManager_ExpiredToken(t *testing.T) {
	manager := newManager(-time.Minute)

	token, _, err := manager.GenerateToken(&jwt.UserInfo{ID: "user-1", Role: "operator"})
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestManager_WrongSecret(t *testing.T) {
	manager := newManager(time.Hour)

	token, _, err := manager.GenerateToken(&jwt.UserInfo{ID: "user-1", Role: "robot"})
	require.NoError(t, err)

	other := jwt.NewManager(&config.JWTConfig{
		Secret:       "different-secret",
		AccessExpiry: time.Hour,
		Issuer:       "smartstorage-test",
	})

	_, err = other.ValidateToken(token)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestManager_GarbageToken(t *testing.T) {
	manager := newManager(time.Hour)

	_, err := manager.ValidateToken("not.a.token")
	require.Error(t, err)
}
