package user

import "context"

type contextKey string

const (
	userContextKey  contextKey = "authenticated_user"
	tokenContextKey contextKey = "session_token"
)

// NewContext returns a context carrying the authenticated user and the raw
// session token it presented. Set by the auth middleware; handlers that sit
// behind it may rely on both being present.
func NewContext(ctx context.Context, u *User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, u)
	return context.WithValue(ctx, tokenContextKey, token)
}

// FromContext extracts the authenticated user from the request context.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok
}

// TokenFromContext extracts the raw session token the request presented.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}
