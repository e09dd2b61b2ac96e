package client

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"hostdesk/internal/app/client/config"
	"hostdesk/internal/testutil"
)

type testBackend struct {
	*testutil.RemoteStore

	mu        sync.Mutex
	healthErr error
}

func newTestBackend() *testBackend {
	return &testBackend{RemoteStore: testutil.NewRemoteStore()}
}

func (b *testBackend) HealthCheck(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.healthErr
}

func (b *testBackend) setHealth(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthErr = err
}

func newTestQueue(t *testing.T, opts ...QueueOption) *SQLiteQueue {
	t.Helper()

	q, err := NewSQLiteQueue(filepath.Join(t.TempDir(), "queue.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "local",
		ServerAddress:  "localhost:8080",
		ProbeInterval:  10 * time.Millisecond,
		SettleDelay:    10 * time.Millisecond,
		RequestTimeout: time.Second,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, backend *testBackend, initial NetworkState) *App {
	t.Helper()

	queue := newTestQueue(t, WithMaxRejections(cfg.MaxRejections))
	return NewApp(cfg, slog.Default(), queue, backend, initial)
}
