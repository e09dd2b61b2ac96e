package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{name: "string id", rec: Record{"id": "abc"}, want: "abc"},
		{name: "json float id", rec: Record{"id": float64(42)}, want: "42"},
		{name: "int64 id", rec: Record{"id": int64(7)}, want: "7"},
		{name: "missing id", rec: Record{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.ID())
		})
	}
}

func TestRecord_Float(t *testing.T) {
	rec := Record{
		"f":   10000.5,
		"n":   json.Number("250"),
		"s":   "12.25",
		"i":   3,
		"bad": []string{"x"},
	}

	v, err := rec.Float("f")
	require.NoError(t, err)
	assert.Equal(t, 10000.5, v)

	v, err = rec.Float("n")
	require.NoError(t, err)
	assert.Equal(t, 250.0, v)

	v, err = rec.Float("s")
	require.NoError(t, err)
	assert.Equal(t, 12.25, v)

	v, err = rec.Float("i")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = rec.Float("missing")
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = rec.Float("bad")
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	transport := fmt.Errorf("create payment: %w", &TransportError{Op: "create", Err: errors.New("connection refused")})
	rejection := fmt.Errorf("update booking: %w", &RejectionError{Op: "update", Status: 422, Reason: "unknown column"})

	assert.True(t, IsTransport(transport))
	assert.False(t, IsRejection(transport))
	assert.ErrorIs(t, transport, ErrUnreachable)

	assert.True(t, IsRejection(rejection))
	assert.False(t, IsTransport(rejection))
	assert.ErrorIs(t, rejection, ErrRejected)
	assert.Contains(t, rejection.Error(), "status 422")
}

func TestIdempotencyKey(t *testing.T) {
	ctx := context.Background()

	_, ok := IdempotencyKey(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, WithIdempotencyKey(ctx, ""))

	key, ok := IdempotencyKey(WithIdempotencyKey(ctx, "k-1"))
	assert.True(t, ok)
	assert.Equal(t, "k-1", key)
}
