package auth

import (
	"net/http"
	"strings"

	"github.com/smartstorage/smartstorage-backend/internal/auth/jwt"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// Middleware validates bearer tokens and attaches the user to the request
// context. WebSocket clients may pass the token as the access_token query
// parameter instead of the Authorization header.
type Middleware struct {
	jwtManager *jwt.Manager
}

// NewMiddleware creates authentication middleware backed by the JWT manager
func NewMiddleware(jwtManager *jwt.Manager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// Authenticate rejects requests without a valid access token
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			httputil.Error(w, errors.Unauthorized("missing access token"))
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			httputil.Error(w, err)
			return
		}

		ctx := httputil.WithUserContext(r.Context(), claims.UserID, claims.Name, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. It must run after Authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := httputil.GetUserRole(r.Context())
			if _, ok := allowed[role]; !ok {
				httputil.Error(w, errors.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken pulls a bearer token from the Authorization header, falling
// back to the access_token query parameter used by WebSocket connects.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}
