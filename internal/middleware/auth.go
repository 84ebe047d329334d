package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/auth"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// AuthenticatedUser is the identity attached to the request context by
// RequireAuth.
type AuthenticatedUser struct {
	ID       primitive.ObjectID
	Username string
	Email    string
}

// TokenVerifier validates access tokens. Satisfied by *auth.TokenManager.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.AccessClaims, error)
}

// RequireAuth rejects requests that lack a valid access token. The token is
// read from the accessToken cookie or, failing that, a bearer Authorization
// header. On success the resolved identity is stored on the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessTokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				unauthorized(w)
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				unauthorized(w)
				return
			}

			user := AuthenticatedUser{
				ID:       userID,
				Username: claims.Username,
				Email:    claims.Email,
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity attached by RequireAuth.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(userContextKey).(AuthenticatedUser)
	return user, ok
}

// WithUser attaches an identity to the context. Intended for handler tests.
func WithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"statusCode":401,"data":null,"message":"unauthorized request","success":false}`))
}
