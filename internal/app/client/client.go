package client

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"hostdesk/internal/app/client/config"
	"hostdesk/internal/domain/booking"
	"hostdesk/internal/domain/mutation"
	"hostdesk/internal/domain/remote"
)

// Backend - удалённое хранилище, которое умеет сообщать о своей доступности
type Backend interface {
	remote.Store
	Prober
}

// App связывает очередь, монитор сети, адаптеры и оркестратор.
// Это граница, через которую работает интерфейс (здесь - CLI).
type App struct {
	config   *config.Config
	log      *slog.Logger
	queue    *SQLiteQueue
	backend  Backend
	network  *Monitor
	adapters *Adapters
	sync     *Orchestrator

	runCtx context.Context
	closed bool
	wg     gosync.WaitGroup
	mu     gosync.RWMutex
}

// Outcome результат действия пользователя: применено сразу или поставлено в очередь
type Outcome struct {
	Applied bool
	Queued  *mutation.QueuedMutation
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	queue, err := NewSQLiteQueue(cfg.QueuePath, WithMaxRejections(cfg.MaxRejections))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации очереди: %w", err)
	}

	backend := NewHTTPStore(cfg.BaseURL(), cfg.RequestTimeout, log)

	// начальное состояние сети берётся из проверки сервера
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	initial := Online
	if err := backend.HealthCheck(ctx); err != nil {
		log.Debug("Сервер недоступен при запуске", "error", err)
		initial = Offline
	}

	return NewApp(cfg, log, queue, backend, initial), nil
}

// NewApp собирает приложение из готовых зависимостей
func NewApp(cfg *config.Config, log *slog.Logger, queue *SQLiteQueue, backend Backend, initial NetworkState) *App {
	reconciler := booking.NewReconciler(backend, log)
	adapters := NewAdapters(backend, reconciler, cfg.IdempotencyKeys, log)
	network := NewMonitor(initial, cfg.SettleDelay, log)

	app := &App{
		config:   cfg,
		log:      log,
		queue:    queue,
		backend:  backend,
		network:  network,
		adapters: adapters,
		runCtx:   context.Background(),
	}
	app.sync = NewOrchestrator(queue, adapters, network, log)
	network.OnReconnect(app.autoSync)

	return app
}

// autoSync вызывается из таймера монитора, поэтому учитывается в wg:
// Close не закроет очередь посреди прогона.
func (a *App) autoSync() {
	if !a.track() {
		return
	}
	defer a.wg.Done()
	a.runAutoSync()
}

// track регистрирует фоновую работу, пока приложение не закрыто
func (a *App) track() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return false
	}
	a.wg.Add(1)
	return true
}

func (a *App) runAutoSync() {
	a.mu.RLock()
	ctx := a.runCtx
	a.mu.RUnlock()

	if _, err := a.sync.Trigger(ctx, ModeAuto); err != nil {
		a.log.Debug("Автосинхронизация не запущена", "error", err)
	}
}

// SaveReservation создаёт или обновляет бронирование
func (a *App) SaveReservation(ctx context.Context, r mutation.Reservation) (Outcome, error) {
	return a.submit(ctx, r)
}

// RecordPayment добавляет платёж; баланс бронирования пересчитывается при применении
func (a *App) RecordPayment(ctx context.Context, p mutation.Payment) (Outcome, error) {
	if p.PaymentDate == "" {
		p.PaymentDate = time.Now().Format(time.DateOnly)
	}
	return a.submit(ctx, p)
}

// EditFields частично обновляет произвольную запись
func (a *App) EditFields(ctx context.Context, e mutation.FieldEdit) (Outcome, error) {
	return a.submit(ctx, e)
}

// submit применяет мутацию сразу, если есть связь, иначе ставит в очередь.
// local_id выдаётся до онлайн-попытки: если запись дошла до сервера, а ответ
// потерян, повтор из очереди уйдёт с тем же ключом идемпотентности.
func (a *App) submit(ctx context.Context, p mutation.Payload) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}

	localID := uuid.NewString()

	if a.network.Current() == Online {
		err := a.adapters.Apply(ctx, mutation.QueuedMutation{LocalID: localID, Kind: p.Kind(), Payload: p})
		if err == nil {
			return Outcome{Applied: true}, nil
		}
		if !remote.IsTransport(err) {
			return Outcome{}, err
		}
		a.log.Warn("Сервер недоступен, мутация ставится в очередь", "kind", p.Kind(), "error", err)
		a.network.Set(Offline)
	}

	m, err := a.queue.AppendWithID(ctx, localID, p.Kind(), p)
	if err != nil {
		return Outcome{}, err
	}
	a.log.Info("Мутация поставлена в очередь", "kind", m.Kind, "local_id", m.LocalID)

	return Outcome{Queued: m}, nil
}

// Sync - ручной запуск синхронизации
func (a *App) Sync(ctx context.Context) (Report, error) {
	return a.sync.Trigger(ctx, ModeManual)
}

func (a *App) IsSyncing() bool {
	return a.sync.IsSyncing()
}

// OnSyncReport подписывает fn на итог каждого прогона
func (a *App) OnSyncReport(fn func(Report)) {
	a.sync.Observe(SyncObserver{OnFinish: fn})
}

// OnNetworkChange подписывает fn на смену состояния сети
func (a *App) OnNetworkChange(fn TransitionFunc) {
	a.network.Subscribe(fn)
}

func (a *App) PendingCount(ctx context.Context) (int, error) {
	return a.queue.CountPending(ctx)
}

func (a *App) NetworkState() NetworkState {
	return a.network.Current()
}

// Pending возвращает ожидающие мутации в порядке обработки
func (a *App) Pending(ctx context.Context) ([]mutation.QueuedMutation, error) {
	var out []mutation.QueuedMutation
	for _, kind := range ProcessingOrder {
		items, err := a.queue.ListPending(ctx, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (a *App) Failed(ctx context.Context) ([]mutation.QueuedMutation, error) {
	return a.queue.ListFailed(ctx)
}

func (a *App) Requeue(ctx context.Context, localID string) (mutation.Kind, error) {
	return a.queue.Requeue(ctx, localID)
}

// Run держит монитор сети до отмены ctx. Если при старте есть связь,
// сразу выгружается накопленная очередь.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.runCtx = ctx
	a.mu.Unlock()

	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"network", a.network.Current(),
	)

	if a.network.Current() == Online && a.track() {
		go func() {
			defer a.wg.Done()
			a.runAutoSync()
		}()
	}

	a.network.Run(ctx, a.backend, a.config.ProbeInterval)
	a.wg.Wait()

	a.log.Info("Клиент остановлен")
	return nil
}

func (a *App) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return a.queue.Close()
}
