package domain

import "context"

type userTokenKey struct{}

// WithUserToken stores the caller's forwarded access token in the context.
func WithUserToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, userTokenKey{}, token)
}

// UserTokenFromContext extracts the forwarded access token from the context.
// Returns an empty string when the request carried no token.
func UserTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(userTokenKey{}).(string)
	return token
}
