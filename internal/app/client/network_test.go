package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestMonitor_ReconnectAfterSettle(t *testing.T) {
	m := NewMonitor(Offline, 20*time.Millisecond, slog.Default())

	var fired atomic.Int32
	m.OnReconnect(func() { fired.Add(1) })

	m.Set(Online)
	assert.Equal(t, Online, m.Current())
	assert.Zero(t, fired.Load())

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	// повторный сигнал online не является переходом
	m.Set(Online)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestMonitor_BlipCancelsSettle(t *testing.T) {
	m := NewMonitor(Offline, 50*time.Millisecond, slog.Default())

	var fired atomic.Int32
	m.OnReconnect(func() { fired.Add(1) })

	m.Set(Online)
	m.Set(Offline)
	time.Sleep(150 * time.Millisecond)

	assert.Zero(t, fired.Load())
	assert.Equal(t, Offline, m.Current())
}

func TestMonitor_Observers(t *testing.T) {
	m := NewMonitor(Online, time.Hour, slog.Default())

	var (
		mu          sync.Mutex
		transitions [][2]NetworkState
	)
	m.Subscribe(func(from, to NetworkState) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, [2]NetworkState{from, to})
	})

	var fired atomic.Int32
	m.OnReconnect(func() { fired.Add(1) })

	m.Set(Offline)
	m.Set(Offline)
	m.Set(Online)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][2]NetworkState{{Online, Offline}, {Offline, Online}}, transitions)
	assert.Zero(t, fired.Load())
}

type proberFunc func(ctx context.Context) error

func (f proberFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestMonitor_Probe(t *testing.T) {
	m := NewMonitor(Online, time.Hour, slog.Default())

	state := m.Probe(context.Background(), proberFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	assert.Equal(t, Offline, state)
	assert.Equal(t, Offline, m.Current())

	state = m.Probe(context.Background(), proberFunc(func(context.Context) error { return nil }))
	assert.Equal(t, Online, state)
}

func TestMonitor_Run(t *testing.T) {
	backend := newTestBackend()
	backend.setHealth(errors.New("down"))

	m := NewMonitor(Online, 5*time.Millisecond, slog.Default())
	var fired atomic.Int32
	m.OnReconnect(func() { fired.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, backend, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return m.Current() == Offline }, time.Second, time.Millisecond)

	backend.setHealth(nil)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestNetworkState_String(t *testing.T) {
	assert.Equal(t, "online", Online.String())
	assert.Equal(t, "offline", Offline.String())
}
