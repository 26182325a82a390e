package api

import "context"

type tokenKey struct{}

// ContextWithToken makes every backend call under ctx carry token. An empty
// token sends the calls anonymously.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}

// Detach returns a context that keeps the token of ctx but not its deadline
// or cancellation, for calls shared by several requests.
func Detach(ctx context.Context) context.Context {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return context.Background()
	}
	return ContextWithToken(context.Background(), token)
}
