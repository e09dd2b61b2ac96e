package remote

import "context"

type idempotencyKey struct{}

// WithIdempotencyKey прикрепляет к контексту ключ идемпотентности мутации.
// Хранилище может использовать его для отбрасывания повторных созданий.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey возвращает ключ идемпотентности из контекста
func IdempotencyKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}
