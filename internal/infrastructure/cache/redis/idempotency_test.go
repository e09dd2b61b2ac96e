package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockKV struct {
	mock.Mock
}

func (m *MockKV) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockKV) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult(args.String(0), args.Error(1))
}

func (m *MockKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func (m *MockKV) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewBoolResult(args.Bool(0), args.Error(1))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdempotencyCache_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		val     string
		err     error
		wantID  int64
		wantOK  bool
		wantErr bool
	}{
		{name: "hit", val: "42", wantID: 42, wantOK: true},
		{name: "miss", err: redis.Nil},
		{name: "reserved", val: "0", wantID: 0, wantOK: true},
		{name: "redis down", err: errors.New("connection refused"), wantErr: true},
		{name: "corrupt value", val: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := new(MockKV)
			kv.On("Get", mock.Anything, keyPrefix+"payments:L1").Return(tt.val, tt.err)

			c := NewIdempotencyCache(kv, time.Hour, discardLogger())
			id, ok, err := c.Lookup(context.Background(), "payments:L1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIdempotencyCache_Reserve(t *testing.T) {
	tests := []struct {
		name    string
		won     bool
		err     error
		wantErr bool
	}{
		{name: "free key", won: true},
		{name: "taken key", won: false},
		{name: "redis down", err: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := new(MockKV)
			kv.On("SetNX", mock.Anything, keyPrefix+"payments:L1", reserved, reserveTTL).Return(tt.won, tt.err)

			c := NewIdempotencyCache(kv, time.Hour, discardLogger())
			won, err := c.Reserve(context.Background(), "payments:L1")

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.won, won)
			kv.AssertExpectations(t)
		})
	}
}

func TestIdempotencyCache_Remember(t *testing.T) {
	kv := new(MockKV)
	kv.On("Set", mock.Anything, keyPrefix+"payments:L1", "7", 6*time.Hour).Return("OK", nil).Once()
	kv.On("Set", mock.Anything, keyPrefix+"payments:L2", "9", 6*time.Hour).Return("", errors.New("timeout")).Once()

	c := NewIdempotencyCache(kv, 6*time.Hour, discardLogger())
	ctx := context.Background()

	assert.NoError(t, c.Remember(ctx, "payments:L1", 7))
	assert.Error(t, c.Remember(ctx, "payments:L2", 9))
	kv.AssertExpectations(t)
}

func TestIdempotencyCache_Release(t *testing.T) {
	kv := new(MockKV)
	kv.On("Del", mock.Anything, []string{keyPrefix + "payments:L1"}).Return(1, nil).Once()
	kv.On("Del", mock.Anything, []string{keyPrefix + "payments:L2"}).Return(0, errors.New("timeout")).Once()

	c := NewIdempotencyCache(kv, time.Hour, discardLogger())
	ctx := context.Background()

	assert.NoError(t, c.Release(ctx, "payments:L1"))
	assert.Error(t, c.Release(ctx, "payments:L2"))
	kv.AssertExpectations(t)
}
