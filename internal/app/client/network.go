package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// NetworkState состояние связи с удалённым хранилищем
type NetworkState int

const (
	Offline NetworkState = iota
	Online
)

func (s NetworkState) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// DefaultSettleDelay - пауза после восстановления связи перед автосинхронизацией
const DefaultSettleDelay = time.Second

// Prober проверяет доступность сервера
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// TransitionFunc получает уведомление о смене состояния сети
type TransitionFunc func(from, to NetworkState)

// Monitor хранит единственное на процесс состояние сети и
// запускает автосинхронизацию после восстановления связи.
type Monitor struct {
	mu        sync.RWMutex
	state     NetworkState
	observers []TransitionFunc
	reconnect func()

	settle time.Duration
	timer  *time.Timer
	// поколение онлайна; отложенный запуск срабатывает только в своём поколении
	epoch uint64

	log *slog.Logger
}

func NewMonitor(initial NetworkState, settle time.Duration, log *slog.Logger) *Monitor {
	if settle < 0 {
		settle = 0
	}
	return &Monitor{
		state:  initial,
		settle: settle,
		log:    log.With("component", "network"),
	}
}

// OnReconnect задаёт действие, выполняемое после перехода Offline→Online и паузы
func (m *Monitor) OnReconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnect = fn
}

func (m *Monitor) Subscribe(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Monitor) Current() NetworkState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Set применяет внешний сигнал о состоянии сети
func (m *Monitor) Set(state NetworkState) {
	m.mu.Lock()
	from := m.state
	if from == state {
		m.mu.Unlock()
		return
	}
	m.state = state
	m.epoch++

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if state == Online && m.reconnect != nil {
		epoch := m.epoch
		m.timer = time.AfterFunc(m.settle, func() { m.fire(epoch) })
	}

	observers := make([]TransitionFunc, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	m.log.Info("Состояние сети изменилось", "from", from, "to", state)

	for _, fn := range observers {
		fn(from, state)
	}
}

func (m *Monitor) fire(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.state != Online {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	reconnect := m.reconnect
	m.mu.Unlock()

	m.log.Debug("Связь стабильна, запуск автосинхронизации")
	reconnect()
}

// Probe один раз опрашивает сервер и обновляет состояние
func (m *Monitor) Probe(ctx context.Context, prober Prober) NetworkState {
	state := Online
	if err := prober.HealthCheck(ctx); err != nil {
		if ctx.Err() != nil {
			return m.Current()
		}
		m.log.Debug("Сервер недоступен", "error", err)
		state = Offline
	}
	m.Set(state)
	return state
}

// Run опрашивает сервер с интервалом interval до отмены ctx
func (m *Monitor) Run(ctx context.Context, prober Prober, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Probe(ctx, prober)
	for {
		select {
		case <-ctx.Done():
			m.stop()
			return
		case <-ticker.C:
			m.Probe(ctx, prober)
		}
	}
}

func (m *Monitor) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.epoch++
}
