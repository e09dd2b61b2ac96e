package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"hostdesk/internal/domain/mutation"
	"hostdesk/internal/domain/remote"
)

// ProcessingOrder - порядок обработки очередей за один прогон.
// Бронирования идут раньше платежей, чтобы сверка нашла созданную запись.
var ProcessingOrder = []mutation.Kind{
	mutation.KindReservationUpsert,
	mutation.KindPaymentCreate,
	mutation.KindFieldEdit,
}

// PreconditionError - прогон не запущен
type PreconditionError struct {
	msg string
}

func (e *PreconditionError) Error() string {
	return e.msg
}

var (
	ErrOffline        = &PreconditionError{msg: "cannot sync while offline"}
	ErrSyncInProgress = &PreconditionError{msg: "sync already in progress"}
)

// Mode источник запуска синхронизации
type Mode int

const (
	ModeManual Mode = iota
	ModeAuto
)

func (m Mode) String() string {
	if m == ModeAuto {
		return "auto"
	}
	return "manual"
}

// ItemFailure диагностика по элементу, который не удалось применить
type ItemFailure struct {
	Kind         mutation.Kind `json:"kind"`
	LocalID      string        `json:"local_id"`
	Error        string        `json:"error"`
	Rejected     bool          `json:"rejected"`
	DeadLettered bool          `json:"dead_lettered"`
}

// Report итог одного прогона; не сохраняется
type Report struct {
	Mode         Mode          `json:"-"`
	SuccessCount int           `json:"success_count"`
	FailCount    int           `json:"fail_count"`
	Failures     []ItemFailure `json:"failures,omitempty"`
	StartTime    time.Time     `json:"start_time"`
	Duration     time.Duration `json:"duration"`
}

// Summary - текст для всплывающего уведомления
func (r Report) Summary() string {
	return fmt.Sprintf("Synced %d, %d failed", r.SuccessCount, r.FailCount)
}

// Queue - операции очереди, нужные оркестратору
type Queue interface {
	ListPending(ctx context.Context, kind mutation.Kind) ([]mutation.QueuedMutation, error)
	Remove(ctx context.Context, kind mutation.Kind, localID string) error
	RecordFailure(ctx context.Context, kind mutation.Kind, localID string, cause error, rejected bool) (bool, error)
}

// Applier применяет элемент очереди к удалённому хранилищу
type Applier interface {
	Apply(ctx context.Context, m mutation.QueuedMutation) error
}

// NetworkStatus источник текущего состояния сети
type NetworkStatus interface {
	Current() NetworkState
}

// SyncObserver получает события прогона
type SyncObserver struct {
	OnStart  func(mode Mode)
	OnFinish func(report Report)
}

// Orchestrator выгружает очередь в удалённое хранилище.
// Одновременно выполняется не более одного прогона.
type Orchestrator struct {
	queue   Queue
	applier Applier
	network NetworkStatus
	log     *slog.Logger

	mu        sync.Mutex
	isSyncing bool
	observers []SyncObserver
}

func NewOrchestrator(queue Queue, applier Applier, network NetworkStatus, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		queue:   queue,
		applier: applier,
		network: network,
		log:     log.With("component", "sync"),
	}
}

func (o *Orchestrator) Observe(obs SyncObserver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

func (o *Orchestrator) IsSyncing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isSyncing
}

// Trigger запускает прогон. Параллельный вызов сразу возвращает ErrSyncInProgress,
// вызов без сети - ErrOffline. Ошибки отдельных элементов попадают в отчёт.
func (o *Orchestrator) Trigger(ctx context.Context, mode Mode) (Report, error) {
	o.mu.Lock()
	if o.isSyncing {
		o.mu.Unlock()
		o.log.Debug("Синхронизация уже выполняется", "mode", mode)
		return Report{}, ErrSyncInProgress
	}
	if o.network.Current() != Online {
		o.mu.Unlock()
		return Report{}, ErrOffline
	}
	o.isSyncing = true
	observers := make([]SyncObserver, len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.isSyncing = false
		o.mu.Unlock()
	}()

	for _, obs := range observers {
		if obs.OnStart != nil {
			obs.OnStart(mode)
		}
	}

	report := o.run(ctx, mode)

	for _, obs := range observers {
		if obs.OnFinish != nil {
			obs.OnFinish(report)
		}
	}

	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, mode Mode) Report {
	report := Report{Mode: mode, StartTime: time.Now()}
	o.log.Info("Начало синхронизации", "mode", mode)

	for _, kind := range ProcessingOrder {
		if ctx.Err() != nil {
			break
		}

		items, err := o.queue.ListPending(ctx, kind)
		if err != nil {
			o.log.Error("Ошибка чтения очереди", "kind", kind, "error", err)
			continue
		}

		for _, item := range items {
			if ctx.Err() != nil {
				break
			}
			o.process(ctx, item, &report)
		}
	}

	report.Duration = time.Since(report.StartTime)

	if report.FailCount == 0 {
		o.log.Info("Синхронизация завершена",
			"mode", mode,
			"synced", report.SuccessCount,
			"duration", report.Duration,
		)
	} else {
		o.log.Warn("Синхронизация завершена с ошибками",
			"mode", mode,
			"synced", report.SuccessCount,
			"failed", report.FailCount,
			"duration", report.Duration,
		)
	}

	return report
}

func (o *Orchestrator) process(ctx context.Context, item mutation.QueuedMutation, report *Report) {
	err := o.applier.Apply(ctx, item)

	// итог применения фиксируется в очереди даже после отмены ctx
	bookkeeping := context.WithoutCancel(ctx)

	if err == nil {
		// элемент уже применён; если удалить не вышло, он будет применён повторно
		if err := o.queue.Remove(bookkeeping, item.Kind, item.LocalID); err != nil {
			o.log.Error("Не удалось удалить элемент из очереди",
				"kind", item.Kind, "local_id", item.LocalID, "error", err)
			report.FailCount++
			report.Failures = append(report.Failures, ItemFailure{
				Kind:    item.Kind,
				LocalID: item.LocalID,
				Error:   err.Error(),
			})
			return
		}
		report.SuccessCount++
		return
	}

	rejected := remote.IsRejection(err)
	failure := ItemFailure{
		Kind:     item.Kind,
		LocalID:  item.LocalID,
		Error:    err.Error(),
		Rejected: rejected,
	}

	dead, recErr := o.queue.RecordFailure(bookkeeping, item.Kind, item.LocalID, err, rejected)
	if recErr != nil {
		o.log.Error("Не удалось сохранить ошибку элемента", "local_id", item.LocalID, "error", recErr)
	}
	failure.DeadLettered = dead

	o.log.Warn("Элемент не синхронизирован",
		"kind", item.Kind,
		"local_id", item.LocalID,
		"rejected", rejected,
		"dead_lettered", dead,
		"error", err,
	)

	report.FailCount++
	report.Failures = append(report.Failures, failure)
}
