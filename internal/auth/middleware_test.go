package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/auth"
	"github.com/smartstorage/smartstorage-backend/internal/auth/jwt"
	"github.com/smartstorage/smartstorage-backend/internal/auth/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/config"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: time.Hour,
		Issuer:       "smartstorage-test",
	})
}

func signToken(t *testing.T, manager *jwt.Manager, role string) string {
	t.Helper()
	token, _, err := manager.GenerateToken(&jwt.UserInfo{
		ID:   "user-1",
		Name: "Test",
		Role: role,
	})
	require.NoError(t, err)
	return token
}

func TestExtractToken(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/dashboard/current", nil)
		r.Header.Set("Authorization", "Bearer abc123")
		assert.Equal(t, "abc123", auth.ExtractToken(r))
	})

	t.Run("query parameter fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/ws?access_token=xyz789", nil)
		assert.Equal(t, "xyz789", auth.ExtractToken(r))
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
		assert.Empty(t, auth.ExtractToken(r))
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	manager := testManager()
	mw := auth.NewMiddleware(manager)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user-1", httputil.GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, manager, repository.RoleOperator))
		w := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()

		mw.Authenticate(next).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMiddleware_RequireRole(t *testing.T) {
	manager := testManager()
	mw := auth.NewMiddleware(manager)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := mw.Authenticate(mw.RequireRole(repository.RoleRobot)(ok))

	t.Run("allowed role", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/robots/data", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, manager, repository.RoleRobot))
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong role forbidden", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/robots/data", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, manager, repository.RoleOperator))
		w := httptest.NewRecorder()

		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
