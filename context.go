package userauth

import "context"

type userContextKey struct{}

// WithUser attaches the authenticated user to ctx. The middleware calls it
// once CurrentUser succeeds.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (User, bool) {
	if ctx == nil {
		return nil, false
	}

	user, ok := ctx.Value(userContextKey{}).(User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
