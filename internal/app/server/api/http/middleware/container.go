package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Container хранит общие для всех операций мидлвари
type Container struct {
	base huma.Middlewares
}

func NewContainer(base ...func(ctx huma.Context, next func(huma.Context))) *Container {
	return &Container{base: base}
}

// For возвращает общие мидлвари и, после них, мидлвари конкретного обработчика.
// Каждый вызов отдаёт новый срез.
func (c *Container) For(extra ...func(ctx huma.Context, next func(huma.Context))) huma.Middlewares {
	out := make(huma.Middlewares, 0, len(c.base)+len(extra))
	out = append(out, c.base...)
	return append(out, extra...)
}
