package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookshelf-app/bookshelf/internal/auth"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
)

type contextKey string

const userKey contextKey = "user"

// UserFrom returns the authenticated user attached by RequireUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to the context the way RequireUser does.
// Handler tests use this to simulate an authenticated request.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is exact: case-sensitive prefix, single space.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// RequireUser gates a route behind a valid bearer token. The token subject is
// resolved against the users table and the authoritative DB record, not the
// raw claims, is attached to the request context. A token for a deleted user
// is rejected even though it is still cryptographically valid until expiry
// (there is no revocation list).
//
// Every failure mode maps to a single generic 401 so clients cannot probe
// which check failed; the specific cause is logged server-side.
func RequireUser(tokens *auth.Service, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Not authorized to access this route")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				slog.Debug("auth: token rejected", "error", err, "path", r.URL.Path)
				unauthorized(w, "Not authorized to access this route")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					unauthorized(w, "User no longer exists")
					return
				}
				slog.Error("auth: resolve user failed", "error", err, "user_id", userID)
				unauthorized(w, "Not authorized to access this route")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
