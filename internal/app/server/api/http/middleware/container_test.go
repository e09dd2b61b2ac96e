package middleware

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestContainer_For(t *testing.T) {
	noop := func(ctx huma.Context, next func(huma.Context)) { next(ctx) }
	c := NewContainer(noop)

	first := c.For()
	second := c.For(noop, noop)

	assert.Len(t, first, 1)
	assert.Len(t, second, 3)

	first[0] = nil
	assert.NotNil(t, c.For()[0])
}
