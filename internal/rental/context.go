package rental

import "context"

type contextKey string

const (
	idempotencyKey contextKey = "idempotencyKey"
	principalKey   contextKey = "principal"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   Role
}

func NewContextWithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey, key)
}

func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey).(string)

	return key, ok
}

func NewContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)

	return p, ok
}
