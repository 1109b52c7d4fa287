package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/juantovo/task-manager-api/internal/httputil"
	"github.com/juantovo/task-manager-api/internal/user"
)

// Middleware guards protected routes. A request passes only when it carries
// a token that verifies, belongs to an existing user, and is still a member
// of that user's revocation list.
type Middleware struct {
	tokens   TokenService
	users    user.Repository
	sessions SessionRepository
}

func NewMiddleware(tokens TokenService, users user.Repository, sessions SessionRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users, sessions: sessions}
}

// RequireAuth validates the bearer token and injects the resolved user and
// the raw token into the request context. The Authorization header carries
// the raw token string, without a "Bearer " prefix.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		u, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		// A verified, unexpired token is still rejected once it has been
		// removed from the user's session list; this is what makes logout
		// effective immediately.
		live, err := m.sessions.Contains(r.Context(), userID, token)
		if err != nil {
			httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		if !live {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeTokenRevoked, http.StatusUnauthorized)
			return
		}

		ctx := user.NewContext(r.Context(), u, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
