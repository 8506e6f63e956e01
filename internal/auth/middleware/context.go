package auth

import "context"

type ctxKey int

const userKey ctxKey = iota

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserID returns the authenticated learner id, or "" when absent.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}
